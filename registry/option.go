// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"time"

	"github.com/ava-labs/avalanchego/trace"

	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/emap"
)

// Clock supplies the timestamp snapshot taken once per operation.
type Clock interface {
	Time() time.Time
}

type Option func(*Engine)

// WithAdapter enables delegate and undelegate through [a].
func WithAdapter(a delegation.Adapter) Option {
	return func(e *Engine) {
		e.adapter = a
	}
}

func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

func WithSubscriptions(subs ...Subscription) Option {
	return func(e *Engine) {
		e.subscriptions = append(e.subscriptions, subs...)
	}
}

// WithReplayGuard shares [seen] between engines so a transaction ID is
// accepted once across all of them.
func WithReplayGuard(seen *emap.EMap) Option {
	return func(e *Engine) {
		e.seen = seen
	}
}
