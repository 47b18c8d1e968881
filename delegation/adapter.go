// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegation

import (
	"context"
	"time"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/state"
)

// DelegateRequest asks for write authority over [Account] to move from
// [Owner] at the base venue to the ephemeral venue.
type DelegateRequest struct {
	Account codec.Address
	Owner   codec.Address
	// Seeds prove that [Owner] derived [Account].
	Seeds [][]byte
	// CommitFrequency is how often ephemeral state is checkpointed back to
	// the base venue. Zero selects the adapter default.
	CommitFrequency time.Duration
	// Validator optionally names the operator of the ephemeral venue.
	Validator *codec.Address
}

// UndelegateRequest reclaims write authority over [Account] for [Owner].
type UndelegateRequest struct {
	Account codec.Address
	Owner   codec.Address
}

// Adapter relocates write authority for an account between venues. Base
// venue changes are made through [mu], which the caller commits only if the
// call succeeds.
type Adapter interface {
	// StateKeys returns the base venue keys Delegate and Undelegate touch
	// besides the account itself.
	StateKeys(account codec.Address) state.Keys

	Delegate(ctx context.Context, mu state.Mutable, req *DelegateRequest) error
	Undelegate(ctx context.Context, mu state.Mutable, req *UndelegateRequest) error
}
