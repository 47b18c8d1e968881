// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registrytest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/registry"
	"github.com/ava-labs/fxregistry/state"
	"github.com/ava-labs/fxregistry/storage"
)

// ActionTest is a single parameterized test. It calls Execute on the action with the passed parameters
// and checks that all assertions pass.
type ActionTest struct {
	Name string

	Action registry.Action

	Runtime   *registry.Runtime
	State     *InMemoryStore
	Timestamp int64
	Signers   *auth.Signers

	ExpectedOutputs codec.Typed
	ExpectedErr     error

	Assertion func(context.Context, *testing.T, state.Mutable)
}

// Run executes the [ActionTest] and make sure all assertions pass. A failing
// action must not be observed to have written anything.
func (test *ActionTest) Run(ctx context.Context, t *testing.T) {
	t.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		before := test.State.Clone()
		mu := state.NewSimpleMutable(test.State, test.Action.StateKeys(test.Runtime))
		output, err := test.Action.Execute(ctx, test.Runtime, mu, test.Timestamp, test.Signers)

		require.ErrorIs(err, test.ExpectedErr)
		require.Equal(test.ExpectedOutputs, output)
		if err == nil {
			require.NoError(mu.Commit(test.State))
		}
		if test.ExpectedErr != nil {
			require.Equal(before.Storage, test.State.Storage)
		}

		if test.Assertion != nil {
			test.Assertion(ctx, t, test.State)
		}
	})
}

// NewRuntime returns a base venue runtime without an adapter.
func NewRuntime(rules *registry.Rules) *registry.Runtime {
	return &registry.Runtime{Rules: rules, Venue: ledger.Base}
}

// SeedRegistry writes [r] into [s] as a registry account owned by [owner].
func SeedRegistry(ctx context.Context, t *testing.T, s state.Mutable, rules *registry.Rules, owner codec.Address, r *storage.Registry) {
	t.Helper()
	require := require.New(t)

	data, err := storage.EncodeRegistry(r)
	require.NoError(err)
	account := &storage.Account{Owner: owner, Data: make([]byte, rules.RegistrySpace)}
	copy(account.Data, data)
	require.NoError(storage.PutAccount(ctx, s, rules.RegistryAddress(), account))
}

// GetRegistry decodes the registry stored in [im].
func GetRegistry(ctx context.Context, t *testing.T, im state.Immutable, rules *registry.Rules) (*storage.Account, *storage.Registry) {
	t.Helper()
	require := require.New(t)

	account, err := storage.GetAccount(ctx, im, rules.RegistryAddress())
	require.NoError(err)
	r, err := storage.DecodeRegistry(account.Data)
	require.NoError(err)
	return account, r
}
