// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"fmt"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/consts"
	"github.com/ava-labs/fxregistry/state"
)

var _ Action = (*UpdateRate)(nil)

// UpdateRate sets the rate of the oracle whose credential is the actor.
// Any value is accepted.
type UpdateRate struct {
	Rate uint64 `json:"rate"`
}

func (*UpdateRate) GetTypeID() uint8 {
	return UpdateRateID
}

func (*UpdateRate) StateKeys(rt *Runtime) state.Keys {
	return registryKeys(rt.Rules)
}

func (u *UpdateRate) Execute(
	ctx context.Context,
	rt *Runtime,
	mu state.Mutable,
	timestamp int64,
	signers *auth.Signers,
) (codec.Typed, error) {
	account, r, err := loadWritable(ctx, mu, rt.Rules)
	if err != nil {
		return nil, err
	}
	i := r.Find(signers.Actor())
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorizedOracle, signers.Actor())
	}
	oracle := &r.Oracles[i]
	oracle.Rate = u.Rate
	oracle.LastUpdated = timestamp
	if err := storeRegistry(ctx, mu, rt.Rules, account, r); err != nil {
		return nil, err
	}
	return &UpdateRateResult{
		Name:        oracle.Name,
		Rate:        oracle.Rate,
		LastUpdated: oracle.LastUpdated,
	}, nil
}

func (*UpdateRate) Size() int {
	return consts.Uint64Len
}

func (u *UpdateRate) Marshal(p *codec.Packer) {
	p.PackUint64(u.Rate)
}

func UnmarshalUpdateRate(p *codec.Packer) (Action, error) {
	var u UpdateRate
	u.Rate = p.UnpackUint64(false)
	return &u, p.Err()
}

var _ codec.Typed = (*UpdateRateResult)(nil)

type UpdateRateResult struct {
	Name        string `json:"name"`
	Rate        uint64 `json:"rate"`
	LastUpdated int64  `json:"lastUpdated"`
}

func (*UpdateRateResult) GetTypeID() uint8 {
	return UpdateRateID
}
