// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"fmt"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/state"
	"github.com/ava-labs/fxregistry/storage"
)

var _ Action = (*AddOracle)(nil)

// AddOracle appends an oracle entry. Only the administrator may call it.
type AddOracle struct {
	// Name is a display label and plays no part in identity.
	Name string `json:"name"`

	// Credential is the only address allowed to report this oracle's rate.
	Credential codec.Address `json:"credential"`
}

func (*AddOracle) GetTypeID() uint8 {
	return AddOracleID
}

func (*AddOracle) StateKeys(rt *Runtime) state.Keys {
	return registryKeys(rt.Rules)
}

func (a *AddOracle) Execute(
	ctx context.Context,
	rt *Runtime,
	mu state.Mutable,
	_ int64,
	signers *auth.Signers,
) (codec.Typed, error) {
	if len(a.Name) > MaxNameSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrNameTooLarge, len(a.Name), MaxNameSize)
	}
	account, r, err := loadWritable(ctx, mu, rt.Rules)
	if err != nil {
		return nil, err
	}
	if err := requireAdministrator(r, signers); err != nil {
		return nil, err
	}
	if r.Find(a.Credential) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrOracleAlreadyExists, a.Credential)
	}
	if rt.Rules.MaxOracles > 0 && len(r.Oracles) >= rt.Rules.MaxOracles {
		return nil, fmt.Errorf("%w: %d oracles", ErrCapacityExceeded, len(r.Oracles))
	}
	r.Oracles = append(r.Oracles, storage.Oracle{
		Name:       a.Name,
		Credential: a.Credential,
	})
	if err := storeRegistry(ctx, mu, rt.Rules, account, r); err != nil {
		return nil, err
	}
	return &AddOracleResult{Index: uint32(len(r.Oracles) - 1), Oracles: uint32(len(r.Oracles))}, nil
}

func (a *AddOracle) Size() int {
	return codec.StringLen(a.Name) + codec.AddressLen
}

func (a *AddOracle) Marshal(p *codec.Packer) {
	p.PackString(a.Name)
	p.PackAddress(a.Credential)
}

func UnmarshalAddOracle(p *codec.Packer) (Action, error) {
	var a AddOracle
	a.Name = p.UnpackString(false)
	p.UnpackAddress(true, &a.Credential)
	return &a, p.Err()
}

var _ codec.Typed = (*AddOracleResult)(nil)

type AddOracleResult struct {
	Index   uint32 `json:"index"`
	Oracles uint32 `json:"oracles"`
}

func (*AddOracleResult) GetTypeID() uint8 {
	return AddOracleID
}
