// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/fxregistry/state"
)

var (
	ErrUnknownKind     = errors.New("unknown venue kind")
	ErrNotInUpdate     = errors.New("state does not belong to a ledger update")
	ErrAfterCommitHook = errors.New("after-commit hook failed")
)

// Kind identifies which venue a ledger backs.
type Kind uint8

const (
	Base Kind = iota
	Ephemeral
)

func (k Kind) String() string {
	switch k {
	case Base:
		return "base"
	case Ephemeral:
		return "ephemeral"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "base":
		*k = Base
	case "ephemeral":
		*k = Ephemeral
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, b)
	}
	return nil
}

// Database is the storage a ledger commits to. Both memdb and the pebble
// database satisfy it.
type Database interface {
	database.KeyValueReader
	database.KeyValueWriterDeleter
	database.Batcher
	io.Closer
}

// Ledger is a venue: a database with a single writer. Every update runs
// against an overlay that is committed in one batch or discarded.
type Ledger struct {
	kind Kind
	db   Database
	log  logging.Logger

	l sync.RWMutex
}

func New(kind Kind, db Database, log logging.Logger) *Ledger {
	return &Ledger{kind: kind, db: db, log: log}
}

func (l *Ledger) Kind() Kind {
	return l.kind
}

// pending is the state handed to Update callbacks. It collects the hooks that
// run once the update is resolved.
type pending struct {
	*state.SimpleMutable

	onCommit []func(context.Context) error
	onAbort  []func()
}

// AfterCommit registers hooks on [mu], which must be the state of a running
// Update. [onCommit] runs after the batch is written and [onAbort] runs if the
// update fails before that. Both run under the write lock of the ledger that
// owns [mu]. Either may be nil.
func AfterCommit(mu state.Mutable, onCommit func(context.Context) error, onAbort func()) error {
	p, ok := mu.(*pending)
	if !ok {
		return ErrNotInUpdate
	}
	if onCommit != nil {
		p.onCommit = append(p.onCommit, onCommit)
	}
	if onAbort != nil {
		p.onAbort = append(p.onAbort, onAbort)
	}
	return nil
}

func (p *pending) abort() {
	for i := len(p.onAbort) - 1; i >= 0; i-- {
		p.onAbort[i]()
	}
}

// commit runs every commit hook, even after one of them fails.
func (p *pending) commit(ctx context.Context) error {
	var errs []error
	for _, f := range p.onCommit {
		if err := f(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrAfterCommitHook, errors.Join(errs...))
}

// Update runs [f] under the write lock. Changes made through the provided
// state are committed atomically if [f] returns nil. Hooks registered with
// [AfterCommit] run once the outcome is known.
func (l *Ledger) Update(ctx context.Context, keys state.Keys, f func(state.Mutable) error) error {
	l.l.Lock()
	defer l.l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	mu := &pending{SimpleMutable: state.NewSimpleMutable(state.NewDatabaseView(l.db), keys)}
	if err := l.write(mu, f); err != nil {
		mu.abort()
		return err
	}
	if err := mu.commit(ctx); err != nil {
		l.log.Error("after-commit hook failed",
			zap.Stringer("venue", l.kind),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (l *Ledger) write(mu *pending, f func(state.Mutable) error) error {
	if err := f(mu); err != nil {
		return err
	}
	if mu.Len() == 0 {
		return nil
	}
	batch := l.db.NewBatch()
	if err := mu.Commit(batch); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	l.log.Debug("committed changes",
		zap.Stringer("venue", l.kind),
		zap.Int("changes", mu.Len()),
		zap.Int("size", batch.Size()),
	)
	return nil
}

// Staged is an update whose changes are prepared but not yet written. The
// ledger stays write-locked until Commit or Discard is called.
type Staged struct {
	l    *Ledger
	mu   *state.SimpleMutable
	done bool
}

// Stage runs [f] under the write lock and keeps the lock until the returned
// update is resolved. It lets a change at one venue wait for the outcome of a
// change at another.
func (l *Ledger) Stage(ctx context.Context, keys state.Keys, f func(state.Mutable) error) (*Staged, error) {
	l.l.Lock()
	if err := ctx.Err(); err != nil {
		l.l.Unlock()
		return nil, err
	}
	mu := state.NewSimpleMutable(state.NewDatabaseView(l.db), keys)
	if err := f(mu); err != nil {
		l.l.Unlock()
		return nil, err
	}
	return &Staged{l: l, mu: mu}, nil
}

// Commit writes the staged changes and releases the ledger.
func (s *Staged) Commit(context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	defer s.l.l.Unlock()

	if s.mu.Len() == 0 {
		return nil
	}
	batch := s.l.db.NewBatch()
	if err := s.mu.Commit(batch); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.l.log.Debug("committed staged changes",
		zap.Stringer("venue", s.l.kind),
		zap.Int("changes", s.mu.Len()),
	)
	return nil
}

// Discard drops the staged changes and releases the ledger.
func (s *Staged) Discard() {
	if s.done {
		return
	}
	s.done = true
	s.l.l.Unlock()
}

// View runs [f] against a read-only view of the committed state.
func (l *Ledger) View(ctx context.Context, f func(state.Immutable) error) error {
	l.l.RLock()
	defer l.l.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return f(state.NewDatabaseView(l.db))
}

func (l *Ledger) Close() error {
	l.l.Lock()
	defer l.l.Unlock()

	return l.db.Close()
}
