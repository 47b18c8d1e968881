// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fxregistry/api/jsonrpc"
	"github.com/ava-labs/fxregistry/auth/authtest"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/config"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/registry"

	ginkgo "github.com/onsi/ginkgo/v2"
)

const e2eTimeout = 2 * time.Minute

func TestE2E(t *testing.T) {
	ginkgo.RunSpecs(t, "fxregistry e2e test suites")
}

var (
	e2eNode   *Node
	e2eCancel context.CancelFunc
	e2eDone   chan error

	admin    = authtest.NewKey()
	lagos    = authtest.NewKey()
	abuja    = authtest.NewKey()
	stranger = authtest.NewKey()

	baseCli      *jsonrpc.JSONRPCClient
	ephemeralCli *jsonrpc.JSONRPCClient
)

var _ = ginkgo.BeforeSuite(func() {
	require := require.New(ginkgo.GinkgoT())

	dataDir, err := os.MkdirTemp("", "fxregistry-e2e")
	require.NoError(err)
	ginkgo.DeferCleanup(func() {
		require.NoError(os.RemoveAll(dataDir))
	})

	cfg := config.NewDefaultConfig()
	cfg.DataDir = dataDir
	cfg.Pebble.Sync = false
	cfg.HTTP.ListenAddress = "127.0.0.1:0"
	cfg.Delegation.TickInterval = 50 * time.Millisecond

	e2eNode, err = New(context.Background(), cfg, logging.NoLog{})
	require.NoError(err)

	var ctx context.Context
	ctx, e2eCancel = context.WithCancel(context.Background())
	e2eDone = make(chan error, 1)
	go func() {
		e2eDone <- e2eNode.Run(ctx)
	}()

	uri := "http://" + e2eNode.Address()
	baseCli = jsonrpc.NewJSONRPCClient(uri, ledger.Base)
	ephemeralCli = jsonrpc.NewJSONRPCClient(uri, ledger.Ephemeral)
})

var _ = ginkgo.AfterSuite(func() {
	require := require.New(ginkgo.GinkgoT())

	e2eCancel()
	require.NoError(<-e2eDone)
	require.NoError(e2eNode.Close())
})

// waitForRate polls the base venue until the checkpointed rate of [oracle]
// matches [rate].
func waitForRate(ctx context.Context, require *require.Assertions, oracle codec.Address, rate uint64) {
	for {
		o, err := baseCli.Oracle(ctx, oracle)
		require.NoError(err)
		if o.Rate == rate {
			return
		}
		select {
		case <-ctx.Done():
			require.FailNow("rate was not checkpointed", "want %d, have %d", rate, o.Rate)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

var _ = ginkgo.Describe("[Registry lifecycle]", ginkgo.Ordered, func() {
	var ctx context.Context

	ginkgo.BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), e2eTimeout)
		ginkgo.DeferCleanup(cancel)
	})

	ginkgo.It("serves both venues", func() {
		require := require.New(ginkgo.GinkgoT())

		for _, cli := range []*jsonrpc.JSONRPCClient{baseCli, ephemeralCli} {
			ok, err := cli.Ping(ctx)
			require.NoError(err)
			require.True(ok)
		}
		_, registryAddr, err := baseCli.Rules(ctx)
		require.NoError(err)
		require.NotEqual(codec.EmptyAddress, registryAddr)
	})

	ginkgo.It("registers oracles at the base venue", func() {
		require := require.New(ginkgo.GinkgoT())

		_, err := baseCli.SubmitAction(ctx, &registry.Initialize{}, admin.Factory)
		require.NoError(err)
		for name, key := range map[string]*authtest.Key{"lagos": lagos, "abuja": abuja} {
			_, err := baseCli.SubmitAction(ctx, &registry.AddOracle{Name: name, Credential: key.Address}, admin.Factory)
			require.NoError(err)
		}
		_, err = baseCli.SubmitAction(ctx, &registry.AddOracle{Name: "lagos", Credential: lagos.Address}, admin.Factory)
		require.ErrorContains(err, registry.ErrOracleAlreadyExists.Error())

		r, err := baseCli.Registry(ctx)
		require.NoError(err)
		require.Equal(admin.Address, r.Administrator)
		require.Len(r.Oracles, 2)
	})

	ginkgo.It("accepts rates only from registered oracles", func() {
		require := require.New(ginkgo.GinkgoT())

		_, err := baseCli.SubmitAction(ctx, &registry.UpdateRate{Rate: 1_450}, lagos.Factory)
		require.NoError(err)
		_, err = baseCli.SubmitAction(ctx, &registry.UpdateRate{Rate: 1_999}, stranger.Factory)
		require.ErrorContains(err, registry.ErrUnauthorizedOracle.Error())

		o, err := baseCli.Oracle(ctx, lagos.Address)
		require.NoError(err)
		require.Equal(uint64(1_450), o.Rate)
	})

	ginkgo.It("delegates and checkpoints ephemeral writes", func() {
		require := require.New(ginkgo.GinkgoT())

		_, err := baseCli.SubmitAction(ctx, &registry.Delegate{CommitFrequency: time.Second}, admin.Factory)
		require.NoError(err)

		location, err := baseCli.Location(ctx)
		require.NoError(err)
		require.Equal(registry.LocationDelegated, location)

		_, err = baseCli.SubmitAction(ctx, &registry.UpdateRate{Rate: 1_460}, lagos.Factory)
		require.Error(err)

		_, err = ephemeralCli.SubmitAction(ctx, &registry.UpdateRate{Rate: 1_470}, abuja.Factory)
		require.NoError(err)
		waitForRate(ctx, require, abuja.Address, 1_470)

		record, err := baseCli.Delegation(ctx, codec.EmptyAddress)
		require.NoError(err)
		require.Equal(admin.Address, record.Owner)
		require.NotZero(record.Commits)
	})

	ginkgo.It("undelegates back to the base venue", func() {
		require := require.New(ginkgo.GinkgoT())

		_, err := ephemeralCli.SubmitAction(ctx, &registry.UpdateRate{Rate: 1_480}, lagos.Factory)
		require.NoError(err)
		_, err = baseCli.SubmitAction(ctx, &registry.Undelegate{}, admin.Factory)
		require.NoError(err)

		location, err := baseCli.Location(ctx)
		require.NoError(err)
		require.Equal(registry.LocationBase, location)

		o, err := baseCli.Oracle(ctx, lagos.Address)
		require.NoError(err)
		require.Equal(uint64(1_480), o.Rate)

		_, err = baseCli.SubmitAction(ctx, &registry.UpdateRate{Rate: 1_490}, lagos.Factory)
		require.NoError(err)
	})
})
