// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/auth/authtest"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/codec/codectest"
	"github.com/ava-labs/fxregistry/crypto"
	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/emap"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/registry"
	"github.com/ava-labs/fxregistry/storage"
)

// network is a base and an ephemeral venue joined by a delegation program.
type network struct {
	rules     *registry.Rules
	clock     *mockable.Clock
	program   *delegation.Program
	base      *registry.Engine
	ephemeral *registry.Engine
	admin     *authtest.Key
}

func newNetwork(t *testing.T, opts ...registry.Option) *network {
	t.Helper()
	require := require.New(t)

	rules := newRules()
	clock := &mockable.Clock{}
	clock.Set(time.Unix(testTimestamp, 0))

	baseLedger := ledger.New(ledger.Base, memdb.New(), logging.NoLog{})
	ephemeralLedger := ledger.New(ledger.Ephemeral, memdb.New(), logging.NoLog{})
	program, err := delegation.New(
		delegation.NewDefaultConfig(rules.DelegationProgramID),
		baseLedger,
		ephemeralLedger,
		logging.NoLog{},
		prometheus.NewRegistry(),
		clock,
	)
	require.NoError(err)

	seen := emap.NewEMap()
	baseOpts := append([]registry.Option{
		registry.WithClock(clock),
		registry.WithAdapter(program),
		registry.WithReplayGuard(seen),
	}, opts...)
	base, err := registry.New(rules, baseLedger, logging.NoLog{}, prometheus.NewRegistry(), baseOpts...)
	require.NoError(err)
	ephemeral, err := registry.New(
		rules,
		ephemeralLedger,
		logging.NoLog{},
		prometheus.NewRegistry(),
		registry.WithClock(clock),
		registry.WithReplayGuard(seen),
	)
	require.NoError(err)

	return &network{
		rules:     rules,
		clock:     clock,
		program:   program,
		base:      base,
		ephemeral: ephemeral,
		admin:     authtest.NewKey(),
	}
}

func (n *network) initialize(ctx context.Context, t *testing.T) {
	_, err := n.base.Execute(ctx, &registry.Initialize{}, auth.NewSigners(n.admin.Address))
	require.NoError(t, err)
}

func (n *network) asAdmin() *auth.Signers {
	return auth.NewSigners(n.admin.Address)
}

func (n *network) tick(d time.Duration) int64 {
	n.clock.Set(n.clock.Time().Add(d))
	return n.clock.Time().Unix()
}

func TestScenarioRateUpdate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)
	k1 := codectest.NewRandomAddress()
	k2 := codectest.NewRandomAddress()

	n.initialize(ctx, t)
	_, err := n.base.Execute(ctx, &registry.AddOracle{Name: "BankA", Credential: k1}, n.asAdmin())
	require.NoError(err)
	_, err = n.base.Execute(ctx, &registry.AddOracle{Name: "MarketB", Credential: k2}, n.asAdmin())
	require.NoError(err)

	t1 := n.tick(time.Minute)
	_, err = n.base.Execute(ctx, &registry.UpdateRate{Rate: 1450}, auth.NewSigners(k1))
	require.NoError(err)

	r, err := n.base.Registry(ctx)
	require.NoError(err)
	require.Equal(n.admin.Address, r.Administrator)
	require.Equal([]storage.Oracle{
		{Name: "BankA", Credential: k1, Rate: 1450, LastUpdated: t1},
		{Name: "MarketB", Credential: k2},
	}, r.Oracles)

	o, err := n.base.Oracle(ctx, k1)
	require.NoError(err)
	require.Equal(uint64(1450), o.Rate)
	_, err = n.base.Oracle(ctx, codectest.NewRandomAddress())
	require.ErrorIs(err, registry.ErrOracleNotFound)
}

func TestScenarioDuplicateOracle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)
	k1 := codectest.NewRandomAddress()

	n.initialize(ctx, t)
	_, err := n.base.Execute(ctx, &registry.AddOracle{Name: "BankA", Credential: k1}, n.asAdmin())
	require.NoError(err)
	_, err = n.base.Execute(ctx, &registry.AddOracle{Name: "BankA", Credential: k1}, n.asAdmin())
	require.ErrorIs(err, registry.ErrOracleAlreadyExists)

	r, err := n.base.Registry(ctx)
	require.NoError(err)
	require.Len(r.Oracles, 1)
}

func TestInitializeTwice(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)

	n.initialize(ctx, t)
	_, err := n.base.Execute(ctx, &registry.Initialize{}, auth.NewSigners(codectest.NewRandomAddress()))
	require.ErrorIs(err, storage.ErrAlreadyExists)

	r, err := n.base.Registry(ctx)
	require.NoError(err)
	require.Equal(n.admin.Address, r.Administrator)
}

func TestDistinctOracles(t *testing.T) {
	ctx := context.Background()
	for _, count := range []int{0, 1, 5, 16} {
		n := newNetwork(t)
		n.initialize(ctx, t)
		for i := 0; i < count; i++ {
			_, err := n.base.Execute(ctx, &registry.AddOracle{
				Name:       "oracle",
				Credential: codectest.NewRandomAddress(),
			}, n.asAdmin())
			require.NoError(t, err)
		}
		r, err := n.base.Registry(ctx)
		require.NoError(t, err)
		require.Len(t, r.Oracles, count)
		for _, o := range r.Oracles {
			require.Zero(t, o.Rate)
			require.Zero(t, o.LastUpdated)
		}
	}
}

func TestFailedOperationsMutateNothing(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)
	k1 := codectest.NewRandomAddress()

	n.initialize(ctx, t)
	_, err := n.base.Execute(ctx, &registry.AddOracle{Name: "BankA", Credential: k1}, n.asAdmin())
	require.NoError(err)
	before, err := n.base.Registry(ctx)
	require.NoError(err)

	_, err = n.base.Execute(ctx, &registry.AddOracle{Name: "X", Credential: codectest.NewRandomAddress()}, auth.NewSigners(k1))
	require.ErrorIs(err, registry.ErrUnauthorized)
	_, err = n.base.Execute(ctx, &registry.UpdateRate{Rate: 9}, auth.NewSigners(codectest.NewRandomAddress()))
	require.ErrorIs(err, registry.ErrUnauthorizedOracle)
	_, err = n.base.Execute(ctx, &registry.Undelegate{}, n.asAdmin())
	require.ErrorIs(err, registry.ErrInvalidStateTransition)

	after, err := n.base.Registry(ctx)
	require.NoError(err)
	require.Equal(before, after)
}

func TestDelegateTwice(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)
	n.initialize(ctx, t)

	_, err := n.base.Execute(ctx, &registry.Delegate{}, n.asAdmin())
	require.NoError(err)
	_, err = n.base.Execute(ctx, &registry.Delegate{}, n.asAdmin())
	require.ErrorIs(err, registry.ErrInvalidStateTransition)

	location, err := n.base.Location(ctx)
	require.NoError(err)
	require.Equal(registry.LocationDelegated, location)
}

func TestUndelegateFromBase(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)
	n.initialize(ctx, t)

	_, err := n.base.Execute(ctx, &registry.Undelegate{}, n.asAdmin())
	require.ErrorIs(err, registry.ErrInvalidStateTransition)

	location, err := n.base.Location(ctx)
	require.NoError(err)
	require.Equal(registry.LocationBase, location)
}

func TestRoundTripPreservesRecord(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)
	n.initialize(ctx, t)

	k1 := codectest.NewRandomAddress()
	_, err := n.base.Execute(ctx, &registry.AddOracle{Name: "BankA", Credential: k1}, n.asAdmin())
	require.NoError(err)
	_, err = n.base.Execute(ctx, &registry.AddOracle{Name: "MarketB", Credential: codectest.NewRandomAddress()}, n.asAdmin())
	require.NoError(err)
	n.tick(time.Second)
	_, err = n.base.Execute(ctx, &registry.UpdateRate{Rate: 1450}, auth.NewSigners(k1))
	require.NoError(err)

	before, err := n.base.Registry(ctx)
	require.NoError(err)

	_, err = n.base.Execute(ctx, &registry.Delegate{}, n.asAdmin())
	require.NoError(err)
	_, err = n.base.Execute(ctx, &registry.Undelegate{}, n.asAdmin())
	require.NoError(err)

	after, err := n.base.Registry(ctx)
	require.NoError(err)
	require.Equal(before, after)

	location, err := n.base.Location(ctx)
	require.NoError(err)
	require.Equal(registry.LocationBase, location)
}

func TestDelegatedLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)
	n.initialize(ctx, t)

	k1 := codectest.NewRandomAddress()
	k2 := codectest.NewRandomAddress()
	_, err := n.base.Execute(ctx, &registry.AddOracle{Name: "BankA", Credential: k1}, n.asAdmin())
	require.NoError(err)

	validator := codectest.NewRandomAddress()
	_, err = n.base.Execute(ctx, &registry.Delegate{CommitFrequency: 10 * time.Second, Validator: &validator}, n.asAdmin())
	require.NoError(err)

	location, err := n.ephemeral.Location(ctx)
	require.NoError(err)
	require.Equal(registry.LocationDelegated, location)

	// Only the ephemeral venue accepts writes.
	_, err = n.base.Execute(ctx, &registry.UpdateRate{Rate: 1}, auth.NewSigners(k1))
	require.ErrorIs(err, storage.ErrAccountNotOwned)
	_, err = n.base.Execute(ctx, &registry.AddOracle{Name: "MarketB", Credential: k2}, n.asAdmin())
	require.ErrorIs(err, storage.ErrAccountNotOwned)

	t1 := n.tick(time.Second)
	_, err = n.ephemeral.Execute(ctx, &registry.UpdateRate{Rate: 1460}, auth.NewSigners(k1))
	require.NoError(err)
	_, err = n.ephemeral.Execute(ctx, &registry.AddOracle{Name: "MarketB", Credential: k2}, n.asAdmin())
	require.NoError(err)

	// Migration is driven from the base venue only.
	_, err = n.ephemeral.Execute(ctx, &registry.Undelegate{}, n.asAdmin())
	require.ErrorIs(err, registry.ErrWrongVenue)

	// A checkpoint copies ephemeral content to the base venue.
	n.tick(10 * time.Second)
	committed, err := n.program.CommitDue(ctx)
	require.NoError(err)
	require.Equal(1, committed)
	checkpoint, err := n.base.Registry(ctx)
	require.NoError(err)
	require.Equal(uint64(1460), checkpoint.Oracles[0].Rate)
	require.Len(checkpoint.Oracles, 2)

	t2 := n.tick(time.Second)
	_, err = n.ephemeral.Execute(ctx, &registry.UpdateRate{Rate: 1470}, auth.NewSigners(k2))
	require.NoError(err)

	_, err = n.base.Execute(ctx, &registry.Undelegate{}, n.asAdmin())
	require.NoError(err)

	r, err := n.base.Registry(ctx)
	require.NoError(err)
	require.Equal([]storage.Oracle{
		{Name: "BankA", Credential: k1, Rate: 1460, LastUpdated: t1},
		{Name: "MarketB", Credential: k2, Rate: 1470, LastUpdated: t2},
	}, r.Oracles)

	// The ephemeral venue gave up its copy.
	_, err = n.ephemeral.Execute(ctx, &registry.UpdateRate{Rate: 1}, auth.NewSigners(k1))
	require.ErrorIs(err, registry.ErrRegistryNotFound)
	location, err = n.ephemeral.Location(ctx)
	require.NoError(err)
	require.Equal(registry.LocationBase, location)

	_, err = n.base.Execute(ctx, &registry.UpdateRate{Rate: 1480}, auth.NewSigners(k1))
	require.NoError(err)
}

func TestAdapterFailureKeepsBase(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	adapter := newMockAdapter(t)
	adapter.EXPECT().Delegate(gomock.Any(), gomock.Any(), gomock.Any()).Return(errAdapter).Times(1)
	n := newNetwork(t, registry.WithAdapter(adapter))
	n.initialize(ctx, t)

	_, err := n.base.Execute(ctx, &registry.Delegate{}, n.asAdmin())
	require.ErrorIs(err, registry.ErrAdapterFailure)
	require.ErrorIs(err, errAdapter)

	location, err := n.base.Location(ctx)
	require.NoError(err)
	require.Equal(registry.LocationBase, location)
}

func TestMigrationDisabled(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rules := newRules()
	rules.MigrationEnabled = false
	base, err := registry.New(
		rules,
		ledger.New(ledger.Base, memdb.New(), logging.NoLog{}),
		logging.NoLog{},
		prometheus.NewRegistry(),
	)
	require.NoError(err)

	admin := auth.NewSigners(codectest.NewRandomAddress())
	_, err = base.Execute(ctx, &registry.Initialize{}, admin)
	require.NoError(err)
	_, err = base.Execute(ctx, &registry.Delegate{}, admin)
	require.ErrorIs(err, registry.ErrMigrationDisabled)
	_, err = base.Execute(ctx, &registry.Undelegate{}, admin)
	require.ErrorIs(err, registry.ErrMigrationDisabled)
}

func TestLocationBeforeInitialize(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)

	_, err := n.base.Location(ctx)
	require.ErrorIs(err, registry.ErrRegistryNotFound)
	_, err = n.base.Registry(ctx)
	require.ErrorIs(err, registry.ErrRegistryNotFound)
}

func TestSubscriptions(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	var events []*registry.Event
	n := newNetwork(t, registry.WithSubscriptions(registry.SubscriptionFunc{
		AcceptF: func(_ context.Context, e *registry.Event) error {
			events = append(events, e)
			return nil
		},
	}))
	n.initialize(ctx, t)
	_, err := n.base.Execute(ctx, &registry.UpdateRate{Rate: 1}, n.asAdmin())
	require.ErrorIs(err, registry.ErrUnauthorizedOracle)

	// Failed operations emit nothing.
	require.Len(events, 1)
	require.Equal(ledger.Base, events[0].Venue)
	require.Equal(n.admin.Address, events[0].Actor)
	require.Equal(int64(testTimestamp), events[0].Timestamp)
	require.IsType(&registry.InitializeResult{}, events[0].Result)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		tx          func(n *network) (*registry.Transaction, error)
		expectedErr error
	}{
		{
			name: "valid",
			tx: func(n *network) (*registry.Transaction, error) {
				return registry.NewTransaction(n.base.Domain(), n.clock.Time().UnixMilli()+1_000, &registry.Initialize{}).Sign(n.admin.Factory)
			},
		},
		{
			name: "expired",
			tx: func(n *network) (*registry.Transaction, error) {
				return registry.NewTransaction(n.base.Domain(), n.clock.Time().UnixMilli()-1, &registry.Initialize{}).Sign(n.admin.Factory)
			},
			expectedErr: registry.ErrTransactionExpired,
		},
		{
			name: "too far in the future",
			tx: func(n *network) (*registry.Transaction, error) {
				return registry.NewTransaction(n.base.Domain(), n.clock.Time().UnixMilli()+registry.MaxTxTTL+1, &registry.Initialize{}).Sign(n.admin.Factory)
			},
			expectedErr: registry.ErrTransactionTooFar,
		},
		{
			name: "unsigned",
			tx: func(n *network) (*registry.Transaction, error) {
				return registry.NewTransaction(n.base.Domain(), n.clock.Time().UnixMilli()+1_000, &registry.Initialize{}), nil
			},
			expectedErr: auth.ErrNoSigners,
		},
		{
			name: "signature over other action",
			tx: func(n *network) (*registry.Transaction, error) {
				expiry := n.clock.Time().UnixMilli() + 1_000
				signed, err := registry.NewTransaction(n.base.Domain(), expiry, &registry.UpdateRate{Rate: 1}).Sign(n.admin.Factory)
				if err != nil {
					return nil, err
				}
				return &registry.Transaction{
					Domain: n.base.Domain(),
					Expiry: expiry,
					Action: &registry.UpdateRate{Rate: 2},
					Auths:  signed.Auths,
				}, nil
			},
			expectedErr: crypto.ErrInvalidSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			n := newNetwork(t)
			tx, err := tt.tx(n)
			require.NoError(err)

			_, err = n.base.Submit(ctx, tx)
			require.ErrorIs(err, tt.expectedErr)
		})
	}
}

func TestSubmitReplay(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)
	n.initialize(ctx, t)

	oracle := authtest.NewKey()
	add, err := registry.NewTransaction(
		n.base.Domain(),
		n.clock.Time().UnixMilli()+1_000,
		&registry.AddOracle{Name: "BankA", Credential: oracle.Address},
	).Sign(n.admin.Factory)
	require.NoError(err)
	_, err = n.base.Submit(ctx, add)
	require.NoError(err)

	update, err := registry.NewTransaction(n.base.Domain(), n.clock.Time().UnixMilli()+1_000, &registry.UpdateRate{Rate: 1450}).Sign(oracle.Factory)
	require.NoError(err)
	result, err := n.base.Submit(ctx, update)
	require.NoError(err)
	require.Equal(uint64(1450), result.(*registry.UpdateRateResult).Rate)

	_, err = n.base.Submit(ctx, update)
	require.ErrorIs(err, registry.ErrDuplicateTx)

	// Co-signers count for administration but the actor is the first signer.
	cosigned, err := registry.NewTransaction(
		n.base.Domain(),
		n.clock.Time().UnixMilli()+2_000,
		&registry.AddOracle{Name: "MarketB", Credential: codectest.NewRandomAddress()},
	).Sign(oracle.Factory, n.admin.Factory)
	require.NoError(err)
	_, err = n.base.Submit(ctx, cosigned)
	require.NoError(err)
}

func TestNewInvalidRules(t *testing.T) {
	rules := newRules()
	rules.ProgramID = codec.EmptyAddress
	_, err := registry.New(rules, ledger.New(ledger.Base, memdb.New(), logging.NoLog{}), logging.NoLog{}, prometheus.NewRegistry())
	require.ErrorIs(t, err, registry.ErrInvalidRules)
}

func TestSubmitBoundToVenue(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newNetwork(t)
	n.initialize(ctx, t)

	oracle := authtest.NewKey()
	_, err := n.base.Execute(ctx, &registry.AddOracle{Name: "BankA", Credential: oracle.Address}, n.asAdmin())
	require.NoError(err)
	_, err = n.base.Execute(ctx, &registry.Delegate{}, n.asAdmin())
	require.NoError(err)

	expiry := n.clock.Time().UnixMilli() + 10_000
	first, err := registry.NewTransaction(n.ephemeral.Domain(), expiry, &registry.UpdateRate{Rate: 100}).Sign(oracle.Factory)
	require.NoError(err)
	_, err = n.ephemeral.Submit(ctx, first)
	require.NoError(err)
	second, err := registry.NewTransaction(n.ephemeral.Domain(), expiry, &registry.UpdateRate{Rate: 200}).Sign(oracle.Factory)
	require.NoError(err)
	_, err = n.ephemeral.Submit(ctx, second)
	require.NoError(err)

	_, err = n.base.Execute(ctx, &registry.Undelegate{}, n.asAdmin())
	require.NoError(err)

	// A signature collected at the ephemeral venue cannot roll the base back.
	replayed, err := registry.NewParser().UnmarshalTransaction(first.Bytes())
	require.NoError(err)
	_, err = n.base.Submit(ctx, replayed)
	require.ErrorIs(err, registry.ErrWrongVenue)

	o, err := n.base.Oracle(ctx, oracle.Address)
	require.NoError(err)
	require.Equal(uint64(200), o.Rate)

	other := registry.Domain{ProgramID: codectest.NewRandomAddress(), Venue: ledger.Base}
	foreign, err := registry.NewTransaction(other, expiry, &registry.UpdateRate{Rate: 300}).Sign(oracle.Factory)
	require.NoError(err)
	_, err = n.base.Submit(ctx, foreign)
	require.ErrorIs(err, registry.ErrWrongDeployment)
}

func TestReplayGuardShared(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	seen := emap.NewEMap()
	n := newNetwork(t, registry.WithReplayGuard(seen))

	tx, err := registry.NewTransaction(n.base.Domain(), n.clock.Time().UnixMilli()+1_000, &registry.Initialize{}).Sign(n.admin.Factory)
	require.NoError(err)
	_, err = n.base.Submit(ctx, tx)
	require.NoError(err)
	require.True(seen.Contains(tx.ID()))
}
