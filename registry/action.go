// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/state"
	"github.com/ava-labs/fxregistry/storage"
)

// Runtime is what an action may consult besides state.
type Runtime struct {
	Rules   *Rules
	Venue   ledger.Kind
	Adapter delegation.Adapter
}

// Action is a registry operation. Execute must only touch the keys returned
// by StateKeys. Any error discards every change made to [mu].
type Action interface {
	codec.Typed

	StateKeys(rt *Runtime) state.Keys
	Execute(
		ctx context.Context,
		rt *Runtime,
		mu state.Mutable,
		timestamp int64,
		signers *auth.Signers,
	) (codec.Typed, error)

	Size() int
	Marshal(p *codec.Packer)
}

func registryKeys(rules *Rules) state.Keys {
	return state.Keys{string(storage.AccountKey(rules.RegistryAddress())): state.Read | state.Write}
}

func loadRegistry(ctx context.Context, im state.Immutable, rules *Rules) (*storage.Account, *storage.Registry, error) {
	account, err := storage.GetAccount(ctx, im, rules.RegistryAddress())
	if errors.Is(err, storage.ErrAccountNotFound) {
		return nil, nil, ErrRegistryNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	r, err := storage.DecodeRegistry(account.Data)
	if err != nil {
		return nil, nil, err
	}
	return account, r, nil
}

// loadWritable loads the registry only if this venue may write it.
func loadWritable(ctx context.Context, im state.Immutable, rules *Rules) (*storage.Account, *storage.Registry, error) {
	account, r, err := loadRegistry(ctx, im, rules)
	if err != nil {
		return nil, nil, err
	}
	if account.Owner != rules.ProgramID {
		return nil, nil, fmt.Errorf("%w: registry owned by %s", storage.ErrAccountNotOwned, account.Owner)
	}
	return account, r, nil
}

// storeRegistry writes [r] back, refusing to grow past the account space.
func storeRegistry(ctx context.Context, mu state.Mutable, rules *Rules, account *storage.Account, r *storage.Registry) error {
	data, err := storage.EncodeRegistry(r)
	if err != nil {
		return err
	}
	if len(data) > len(account.Data) {
		return fmt.Errorf("%w: %d > %d bytes", ErrCapacityExceeded, len(data), len(account.Data))
	}
	return storage.WriteAccountData(ctx, mu, rules.RegistryAddress(), rules.ProgramID, data)
}

func requireAdministrator(r *storage.Registry, signers *auth.Signers) error {
	if !signers.Contains(r.Administrator) {
		return fmt.Errorf("%w: %s is not administrator", ErrUnauthorized, signers.Actor())
	}
	return nil
}
