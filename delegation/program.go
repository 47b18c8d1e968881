// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/state"
	"github.com/ava-labs/fxregistry/storage"
)

const (
	DefaultCommitFrequency = 30 * time.Second
	MinCommitFrequency     = time.Second
	DefaultTickInterval    = time.Second
)

var _ Adapter = (*Program)(nil)

type Config struct {
	// ProgramID owns delegated accounts at the base venue.
	ProgramID              codec.Address `json:"programID"`
	DefaultCommitFrequency time.Duration `json:"defaultCommitFrequency"`
	TickInterval           time.Duration `json:"tickInterval"`
}

func NewDefaultConfig(programID codec.Address) Config {
	return Config{
		ProgramID:              programID,
		DefaultCommitFrequency: DefaultCommitFrequency,
		TickInterval:           DefaultTickInterval,
	}
}

type schedule struct {
	frequency time.Duration
	next      time.Time
}

// Program moves accounts between a base and an ephemeral ledger. While an
// account is delegated the base copy is owned by the program, so only the
// ephemeral copy accepts writes from the original owner.
//
// Cross-venue steps always lock the base ledger before the ephemeral one.
type Program struct {
	cfg       Config
	base      *ledger.Ledger
	ephemeral *ledger.Ledger
	log       logging.Logger
	clock     *mockable.Clock
	metrics   *metrics

	l      sync.Mutex
	active map[codec.Address]*schedule
}

func New(
	cfg Config,
	base *ledger.Ledger,
	ephemeral *ledger.Ledger,
	log logging.Logger,
	registerer prometheus.Registerer,
	clock *mockable.Clock,
) (*Program, error) {
	if cfg.DefaultCommitFrequency < MinCommitFrequency {
		return nil, fmt.Errorf("%w: default %s", ErrInvalidCommitFrequency, cfg.DefaultCommitFrequency)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if clock == nil {
		clock = &mockable.Clock{}
	}
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Program{
		cfg:       cfg,
		base:      base,
		ephemeral: ephemeral,
		log:       log,
		clock:     clock,
		metrics:   m,
		active:    make(map[codec.Address]*schedule),
	}, nil
}

func (p *Program) ID() codec.Address {
	return p.cfg.ProgramID
}

func (p *Program) StateKeys(account codec.Address) state.Keys {
	keys := p.accountKeys(account)
	keys.Add(string(storage.AccountKey(RecordAddress(p.cfg.ProgramID, account))), state.All)
	return keys
}

func (p *Program) accountKeys(account codec.Address) state.Keys {
	return state.Keys{string(storage.AccountKey(account)): state.All}
}

// Delegate hands [req.Account] to the program at the base venue and clones
// it into the ephemeral venue, owned by [req.Owner].
func (p *Program) Delegate(ctx context.Context, mu state.Mutable, req *DelegateRequest) error {
	if storage.DeriveAddress(req.Owner, req.Seeds...) != req.Account {
		return fmt.Errorf("%w: %s", ErrInvalidSeeds, req.Account)
	}
	frequency := req.CommitFrequency
	if frequency == 0 {
		frequency = p.cfg.DefaultCommitFrequency
	}
	if frequency < MinCommitFrequency {
		return fmt.Errorf("%w: %s < %s", ErrInvalidCommitFrequency, frequency, MinCommitFrequency)
	}

	account, err := storage.GetAccount(ctx, mu, req.Account)
	if err != nil {
		return err
	}
	if account.Owner == p.cfg.ProgramID {
		return fmt.Errorf("%w: %s", ErrAlreadyDelegated, req.Account)
	}
	if account.Owner != req.Owner {
		return fmt.Errorf("%w: owner=%s expected=%s", ErrOwnerMismatch, account.Owner, req.Owner)
	}

	// Base venue: transfer ownership and record the delegation.
	if err := storage.AssignOwner(ctx, mu, req.Account, req.Owner, p.cfg.ProgramID); err != nil {
		return err
	}
	now := p.clock.Time().Unix()
	record := &Record{
		Owner:           req.Owner,
		Account:         req.Account,
		CommitFrequency: frequency,
		Validator:       req.Validator,
		DelegatedAt:     now,
		LastCommit:      now,
	}
	recordAddr := RecordAddress(p.cfg.ProgramID, req.Account)
	if err := storage.CreateAccount(ctx, mu, recordAddr, p.cfg.ProgramID, RecordSpace); err != nil {
		return err
	}
	if err := putRecord(ctx, mu, p.cfg.ProgramID, record); err != nil {
		return err
	}

	// The ephemeral clone is staged now and written only once the base
	// changes are on disk. Until then the ephemeral venue stays locked.
	staged, err := p.ephemeral.Stage(ctx, p.accountKeys(req.Account), func(emu state.Mutable) error {
		if _, err := storage.GetAccount(ctx, emu, req.Account); err == nil {
			return fmt.Errorf("%w: present at ephemeral venue", ErrAlreadyDelegated)
		}
		return storage.PutAccount(ctx, emu, req.Account, &storage.Account{
			Owner: req.Owner,
			Data:  account.Data,
		})
	})
	if err != nil {
		return err
	}
	onCommit := func(ctx context.Context) error {
		// The base copy is delegated either way. If the clone does not land,
		// the next checkpoint reseeds the ephemeral venue from it.
		p.schedule(req.Account, frequency)
		if err := staged.Commit(ctx); err != nil {
			return fmt.Errorf("failed to clone %s into ephemeral venue: %w", req.Account, err)
		}
		p.metrics.delegations.Inc()
		fields := []zap.Field{
			zap.Stringer("account", req.Account),
			zap.Stringer("owner", req.Owner),
			zap.Duration("commitFrequency", frequency),
		}
		if req.Validator != nil {
			fields = append(fields, zap.Stringer("validator", *req.Validator))
		}
		p.log.Info("delegated account", fields...)
		return nil
	}
	if err := ledger.AfterCommit(mu, onCommit, staged.Discard); err != nil {
		staged.Discard()
		return err
	}
	return nil
}

// Undelegate removes the ephemeral copy of [req.Account], writes its content
// back to the base venue and restores the original owner.
func (p *Program) Undelegate(ctx context.Context, mu state.Mutable, req *UndelegateRequest) error {
	record, err := getRecord(ctx, mu, p.cfg.ProgramID, req.Account)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return fmt.Errorf("%w: %s", ErrNotDelegated, req.Account)
	}
	if err != nil {
		return err
	}
	if record.Owner != req.Owner {
		return fmt.Errorf("%w: owner=%s expected=%s", ErrOwnerMismatch, record.Owner, req.Owner)
	}

	// The ephemeral lock is held from the snapshot until the base changes
	// are on disk, so no ephemeral write can land in between and the copy
	// survives a failed base write.
	staged, err := p.ephemeral.Stage(ctx, p.accountKeys(req.Account), func(emu state.Mutable) error {
		account, err := storage.GetAccount(ctx, emu, req.Account)
		if err != nil {
			return err
		}
		if err := storage.WriteAccountData(ctx, mu, req.Account, p.cfg.ProgramID, account.Data); err != nil {
			return err
		}
		if err := storage.AssignOwner(ctx, mu, req.Account, p.cfg.ProgramID, record.Owner); err != nil {
			return err
		}
		if err := storage.DeleteAccount(ctx, mu, RecordAddress(p.cfg.ProgramID, req.Account)); err != nil {
			return err
		}
		return storage.DeleteAccount(ctx, emu, req.Account)
	})
	if err != nil {
		return err
	}
	onCommit := func(ctx context.Context) error {
		p.unschedule(req.Account)
		if err := staged.Commit(ctx); err != nil {
			return fmt.Errorf("failed to remove %s from ephemeral venue: %w", req.Account, err)
		}
		p.metrics.undelegations.Inc()
		p.log.Info("undelegated account",
			zap.Stringer("account", req.Account),
			zap.Stringer("owner", record.Owner),
			zap.Uint64("commits", record.Commits),
		)
		return nil
	}
	if err := ledger.AfterCommit(mu, onCommit, staged.Discard); err != nil {
		staged.Discard()
		return err
	}
	return nil
}

// Commit checkpoints the ephemeral content of [account] to the base venue.
// The base copy stays owned by the program.
func (p *Program) Commit(ctx context.Context, account codec.Address) error {
	start := time.Now()
	err := p.base.Update(ctx, p.StateKeys(account), func(mu state.Mutable) error {
		record, err := getRecord(ctx, mu, p.cfg.ProgramID, account)
		if errors.Is(err, storage.ErrAccountNotFound) {
			return fmt.Errorf("%w: %s", ErrNotDelegated, account)
		}
		if err != nil {
			return err
		}
		var data []byte
		err = p.ephemeral.View(ctx, func(im state.Immutable) error {
			a, err := storage.GetAccount(ctx, im, account)
			if err != nil {
				return err
			}
			data = a.Data
			return nil
		})
		if errors.Is(err, storage.ErrAccountNotFound) {
			// Nothing to checkpoint. The clone never landed, so put the
			// base copy back at the ephemeral venue.
			return p.reseed(ctx, mu, record)
		}
		if err != nil {
			return err
		}
		if err := storage.WriteAccountData(ctx, mu, account, p.cfg.ProgramID, data); err != nil {
			return err
		}
		record.LastCommit = p.clock.Time().Unix()
		record.Commits++
		return putRecord(ctx, mu, p.cfg.ProgramID, record)
	})
	if err != nil {
		p.metrics.commitFailures.Inc()
		return err
	}
	p.metrics.commits.Inc()
	p.metrics.commitLatency.Observe(float64(time.Since(start)))
	p.log.Debug("committed delegated account", zap.Stringer("account", account))
	return nil
}

// Record returns the delegation record of [account] at the base venue.
func (p *Program) Record(ctx context.Context, account codec.Address) (*Record, error) {
	var record *Record
	err := p.base.View(ctx, func(im state.Immutable) error {
		r, err := getRecord(ctx, im, p.cfg.ProgramID, account)
		if errors.Is(err, storage.ErrAccountNotFound) {
			return fmt.Errorf("%w: %s", ErrNotDelegated, account)
		}
		record = r
		return err
	})
	return record, err
}

// Watch resumes checkpointing of [account] if it is delegated, for example
// after a restart. It reports whether the account is delegated.
func (p *Program) Watch(ctx context.Context, account codec.Address) (bool, error) {
	record, err := p.Record(ctx, account)
	if errors.Is(err, ErrNotDelegated) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := p.restore(ctx, record); err != nil {
		return false, err
	}
	p.schedule(account, record.CommitFrequency)
	return true, nil
}

// restore seeds the ephemeral venue from the last checkpoint when it no
// longer holds the delegated account.
func (p *Program) restore(ctx context.Context, record *Record) error {
	return p.base.View(ctx, func(im state.Immutable) error {
		return p.reseed(ctx, im, record)
	})
}

// reseed copies the base checkpoint of [record.Account] into the ephemeral
// venue if it is missing there. The caller holds the base lock.
func (p *Program) reseed(ctx context.Context, im state.Immutable, record *Record) error {
	checkpoint, err := storage.GetAccount(ctx, im, record.Account)
	if err != nil {
		return err
	}
	return p.ephemeral.Update(ctx, p.accountKeys(record.Account), func(emu state.Mutable) error {
		_, err := storage.GetAccount(ctx, emu, record.Account)
		if err == nil || !errors.Is(err, storage.ErrAccountNotFound) {
			return err
		}
		p.log.Warn("restoring ephemeral account from checkpoint",
			zap.Stringer("account", record.Account),
			zap.Int64("lastCommit", record.LastCommit),
		)
		return storage.PutAccount(ctx, emu, record.Account, &storage.Account{
			Owner: record.Owner,
			Data:  checkpoint.Data,
		})
	})
}

func (p *Program) schedule(account codec.Address, frequency time.Duration) {
	p.l.Lock()
	defer p.l.Unlock()

	p.active[account] = &schedule{frequency: frequency, next: p.clock.Time().Add(frequency)}
	p.metrics.active.Set(float64(len(p.active)))
}

func (p *Program) unschedule(account codec.Address) {
	p.l.Lock()
	defer p.l.Unlock()

	delete(p.active, account)
	p.metrics.active.Set(float64(len(p.active)))
}

func (p *Program) due() []codec.Address {
	p.l.Lock()
	defer p.l.Unlock()

	now := p.clock.Time()
	accounts := []codec.Address{}
	for account, s := range p.active {
		if now.Before(s.next) {
			continue
		}
		s.next = now.Add(s.frequency)
		accounts = append(accounts, account)
	}
	return accounts
}

// CommitDue checkpoints every delegated account whose commit frequency has
// elapsed. It returns the number of accounts committed.
func (p *Program) CommitDue(ctx context.Context) (int, error) {
	var (
		committed int
		errs      []error
	)
	for _, account := range p.due() {
		err := p.Commit(ctx, account)
		if errors.Is(err, ErrNotDelegated) {
			p.unschedule(account)
			continue
		}
		if err != nil {
			p.log.Warn("unable to commit delegated account",
				zap.Stringer("account", account),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		committed++
	}
	return committed, errors.Join(errs...)
}

// Run checkpoints delegated accounts until [ctx] is done.
func (p *Program) Run(ctx context.Context) error {
	t := time.NewTicker(p.cfg.TickInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			// Failures are logged and retried on the next tick.
			_, _ = p.CommitDue(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}
