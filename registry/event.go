// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"errors"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/ledger"
)

var _ Subscription = (*SubscriptionFunc)(nil)

// Event describes an accepted operation. Events are informational only.
type Event struct {
	Venue     ledger.Kind   `json:"venue"`
	Timestamp int64         `json:"timestamp"`
	Actor     codec.Address `json:"actor"`
	Action    Action        `json:"action"`
	Result    codec.Typed   `json:"result"`
}

// Subscription defines how to consume events
type Subscription interface {
	// Accept returns fatal errors
	Accept(ctx context.Context, e *Event) error
	// Close returns fatal errors
	Close() error
}

type SubscriptionFunc struct {
	AcceptF func(ctx context.Context, e *Event) error
}

func (s SubscriptionFunc) Accept(ctx context.Context, e *Event) error {
	return s.AcceptF(ctx, e)
}

func (SubscriptionFunc) Close() error {
	return nil
}

func notifyAll(ctx context.Context, e *Event, subs ...Subscription) error {
	var errs []error
	for _, sub := range subs {
		if err := sub.Accept(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
