// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"fmt"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/state"
	"github.com/ava-labs/fxregistry/storage"
)

var _ Action = (*Initialize)(nil)

// Initialize creates the registry with the actor as administrator.
type Initialize struct{}

func (*Initialize) GetTypeID() uint8 {
	return InitializeID
}

func (*Initialize) StateKeys(rt *Runtime) state.Keys {
	return state.Keys{string(storage.AccountKey(rt.Rules.RegistryAddress())): state.All}
}

func (*Initialize) Execute(
	ctx context.Context,
	rt *Runtime,
	mu state.Mutable,
	_ int64,
	signers *auth.Signers,
) (codec.Typed, error) {
	if rt.Venue != ledger.Base {
		return nil, fmt.Errorf("%w: initialize at %s venue", ErrWrongVenue, rt.Venue)
	}
	addr := rt.Rules.RegistryAddress()
	if err := storage.CreateAccount(ctx, mu, addr, rt.Rules.ProgramID, rt.Rules.RegistrySpace); err != nil {
		return nil, err
	}
	r := &storage.Registry{
		Administrator: signers.Actor(),
		Oracles:       []storage.Oracle{},
	}
	account, err := storage.GetAccount(ctx, mu, addr)
	if err != nil {
		return nil, err
	}
	if err := storeRegistry(ctx, mu, rt.Rules, account, r); err != nil {
		return nil, err
	}
	return &InitializeResult{Registry: addr, Administrator: r.Administrator}, nil
}

func (*Initialize) Size() int {
	return 0
}

func (*Initialize) Marshal(*codec.Packer) {}

func UnmarshalInitialize(*codec.Packer) (Action, error) {
	return &Initialize{}, nil
}

var _ codec.Typed = (*InitializeResult)(nil)

type InitializeResult struct {
	Registry      codec.Address `json:"registry"`
	Administrator codec.Address `json:"administrator"`
}

func (*InitializeResult) GetTypeID() uint8 {
	return InitializeID
}
