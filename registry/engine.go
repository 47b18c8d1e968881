// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/emap"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/state"
	"github.com/ava-labs/fxregistry/storage"

	fxtrace "github.com/ava-labs/fxregistry/trace"
)

// Engine executes registry operations against one venue. Operations are
// serialized by the venue and each either commits fully or not at all.
type Engine struct {
	rules    *Rules
	venue    *ledger.Ledger
	verifier *auth.Verifier
	log      logging.Logger
	metrics  *metrics
	seen     *emap.EMap

	adapter       delegation.Adapter
	clock         Clock
	tracer        trace.Tracer
	subscriptions []Subscription
}

func New(
	rules *Rules,
	venue *ledger.Ledger,
	log logging.Logger,
	registerer prometheus.Registerer,
	opts ...Option,
) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		rules:    rules,
		venue:    venue,
		verifier: auth.NewVerifier(),
		log:      log,
		metrics:  m,
		seen:     emap.NewEMap(),
		clock:    &mockable.Clock{},
		tracer:   fxtrace.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Rules() *Rules {
	return e.rules
}

func (e *Engine) Venue() ledger.Kind {
	return e.venue.Kind()
}

// Domain is the domain transactions submitted here must be signed for.
func (e *Engine) Domain() Domain {
	return Domain{ProgramID: e.rules.ProgramID, Venue: e.venue.Kind()}
}

// Submit checks the domain, expiry and signatures of [tx] before executing
// it. A transaction is accepted at most once while it is unexpired.
func (e *Engine) Submit(ctx context.Context, tx *Transaction) (codec.Typed, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Submit")
	defer span.End()

	now := e.clock.Time().UnixMilli()
	switch {
	case tx.Domain.ProgramID != e.rules.ProgramID:
		e.metrics.rejected.Inc()
		return nil, fmt.Errorf("%w: signed for %s", ErrWrongDeployment, tx.Domain.ProgramID)
	case tx.Domain.Venue != e.venue.Kind():
		e.metrics.rejected.Inc()
		return nil, fmt.Errorf("%w: signed for %s, submitted at %s", ErrWrongVenue, tx.Domain.Venue, e.venue.Kind())
	case tx.Expiry < now:
		e.metrics.rejected.Inc()
		return nil, fmt.Errorf("%w: %d < %d", ErrTransactionExpired, tx.Expiry, now)
	case tx.Expiry > now+MaxTxTTL:
		e.metrics.rejected.Inc()
		return nil, fmt.Errorf("%w: %d > %d", ErrTransactionTooFar, tx.Expiry, now+MaxTxTTL)
	}
	if len(tx.bytes) == 0 {
		b, err := tx.Marshal()
		if err != nil {
			return nil, err
		}
		tx.init(b)
	}
	signers, err := e.verifier.Verify(ctx, tx.Digest(), tx.Auths)
	if err != nil {
		e.metrics.rejected.Inc()
		return nil, err
	}
	e.seen.SetMin(now)
	if !e.seen.Add(tx.ID(), tx.Expiry) {
		e.metrics.rejected.Inc()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTx, tx.ID())
	}
	return e.Execute(ctx, tx.Action, signers)
}

// Execute runs [action] on behalf of already verified [signers].
func (e *Engine) Execute(ctx context.Context, action Action, signers *auth.Signers) (codec.Typed, error) {
	name := ActionName(action.GetTypeID())
	ctx, span := e.tracer.Start(ctx, "Engine.Execute")
	span.SetAttributes(
		attribute.String("action", name),
		attribute.String("venue", e.venue.Kind().String()),
	)
	defer span.End()

	start := time.Now()
	rt := &Runtime{
		Rules:   e.rules,
		Venue:   e.venue.Kind(),
		Adapter: e.adapter,
	}
	var (
		result    codec.Typed
		timestamp int64
	)
	err := e.venue.Update(ctx, action.StateKeys(rt), func(mu state.Mutable) error {
		timestamp = e.clock.Time().Unix()
		r, err := action.Execute(ctx, rt, mu, timestamp, signers)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		e.metrics.failed.WithLabelValues(name).Inc()
		e.log.Debug("action failed",
			zap.String("action", name),
			zap.Stringer("venue", e.venue.Kind()),
			zap.Stringer("actor", signers.Actor()),
			zap.Error(err),
		)
		return nil, err
	}
	e.metrics.executed.WithLabelValues(name).Inc()
	e.metrics.executeLatency.Observe(float64(time.Since(start)))
	e.logResult(signers.Actor(), result)

	event := &Event{
		Venue:     e.venue.Kind(),
		Timestamp: timestamp,
		Actor:     signers.Actor(),
		Action:    action,
		Result:    result,
	}
	if err := notifyAll(ctx, event, e.subscriptions...); err != nil {
		e.log.Warn("subscription failed", zap.String("action", name), zap.Error(err))
	}
	return result, nil
}

func (e *Engine) logResult(actor codec.Address, result codec.Typed) {
	venue := zap.Stringer("venue", e.venue.Kind())
	switch r := result.(type) {
	case *InitializeResult:
		e.log.Info("exchange rate registry initialized",
			venue,
			zap.Stringer("registry", r.Registry),
			zap.Stringer("administrator", r.Administrator),
		)
	case *AddOracleResult:
		e.metrics.oracles.Set(float64(r.Oracles))
		e.log.Info("oracle added",
			venue,
			zap.Uint32("index", r.Index),
			zap.Stringer("administrator", actor),
		)
	case *UpdateRateResult:
		e.log.Info(fmt.Sprintf("rate updated by %s: 1 USD = %d NGN", r.Name, r.Rate),
			venue,
			zap.Stringer("oracle", actor),
			zap.Int64("lastUpdated", r.LastUpdated),
		)
	case *MigrationResult:
		e.log.Info("registry authority moved",
			venue,
			zap.Stringer("location", r.Location),
		)
	}
}

// Registry returns the committed registry record at this venue.
func (e *Engine) Registry(ctx context.Context) (*storage.Registry, error) {
	var r *storage.Registry
	err := e.venue.View(ctx, func(im state.Immutable) error {
		_, reg, err := loadRegistry(ctx, im, e.rules)
		r = reg
		return err
	})
	return r, err
}

// Oracle returns the entry registered for [credential].
func (e *Engine) Oracle(ctx context.Context, credential codec.Address) (*storage.Oracle, error) {
	r, err := e.Registry(ctx)
	if err != nil {
		return nil, err
	}
	i := r.Find(credential)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrOracleNotFound, credential)
	}
	return &r.Oracles[i], nil
}

// Location returns the authority location as seen from this venue.
func (e *Engine) Location(ctx context.Context) (Location, error) {
	var l Location
	err := e.venue.View(ctx, func(im state.Immutable) error {
		var err error
		l, err = GetLocation(ctx, im, e.rules, e.venue.Kind())
		return err
	})
	return l, err
}
