// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/fxregistry/api"
	"github.com/ava-labs/fxregistry/api/jsonrpc"
	"github.com/ava-labs/fxregistry/api/ws"
	"github.com/ava-labs/fxregistry/config"
	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/emap"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/registry"
	"github.com/ava-labs/fxregistry/server"
	"github.com/ava-labs/fxregistry/storage"

	fxtrace "github.com/ava-labs/fxregistry/trace"
)

const (
	baseDB      = "basedb"
	ephemeralDB = "ephemeraldb"

	delegationNamespace = "delegation"
	metricsRoute        = "metrics"
)

// Node runs a base venue, an ephemeral venue and the delegation program
// joining them, and serves both venues over HTTP.
type Node struct {
	config   config.Config
	log      logging.Logger
	tracer   trace.Tracer
	gatherer metrics.MultiGatherer

	baseLedger      *ledger.Ledger
	ephemeralLedger *ledger.Ledger
	program         *delegation.Program
	base            *registry.Engine
	ephemeral       *registry.Engine
	events          []*ws.WebSocketServer

	// seen holds transaction IDs accepted at either venue.
	seen *emap.EMap

	listener net.Listener
	server   server.Server
}

func New(ctx context.Context, cfg config.Config, log logging.Logger) (*Node, error) {
	rules, err := cfg.GetRules()
	if err != nil {
		return nil, err
	}
	tracer, err := fxtrace.New(&cfg.Trace)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	n := &Node{
		config:   cfg,
		log:      log,
		tracer:   tracer,
		gatherer: metrics.NewPrefixGatherer(),
		seen:     emap.NewEMap(),
	}
	if err := n.init(ctx, rules); err != nil {
		_ = n.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) init(ctx context.Context, rules *registry.Rules) error {
	db, err := storage.New(n.config.Pebble, n.config.DataDir, baseDB, n.gatherer)
	if err != nil {
		return fmt.Errorf("failed to open base venue: %w", err)
	}
	n.baseLedger = ledger.New(ledger.Base, db, n.log)

	var edb ledger.Database = memdb.New()
	if !n.config.EphemeralInMemory {
		edb, err = storage.New(n.config.Pebble, n.config.DataDir, ephemeralDB, n.gatherer)
		if err != nil {
			return fmt.Errorf("failed to open ephemeral venue: %w", err)
		}
	}
	n.ephemeralLedger = ledger.New(ledger.Ephemeral, edb, n.log)

	delegationRegistry := prometheus.NewRegistry()
	if err := n.gatherer.Register(delegationNamespace, delegationRegistry); err != nil {
		return fmt.Errorf("failed to register delegation metrics: %w", err)
	}
	n.program, err = delegation.New(
		n.config.GetDelegationConfig(rules.DelegationProgramID),
		n.baseLedger,
		n.ephemeralLedger,
		n.log,
		delegationRegistry,
		nil,
	)
	if err != nil {
		return err
	}

	n.base, err = n.newEngine(rules, n.baseLedger, registry.WithAdapter(n.program))
	if err != nil {
		return err
	}
	n.ephemeral, err = n.newEngine(rules, n.ephemeralLedger)
	if err != nil {
		return err
	}

	delegated, err := n.program.Watch(ctx, rules.RegistryAddress())
	if err != nil {
		return fmt.Errorf("failed to resume delegation: %w", err)
	}
	n.log.Info("venues ready",
		zap.String("dataDir", n.config.DataDir),
		zap.Stringer("registry", rules.RegistryAddress()),
		zap.Bool("delegated", delegated),
	)
	return n.initServer()
}

func (n *Node) newEngine(rules *registry.Rules, l *ledger.Ledger, opts ...registry.Option) (*registry.Engine, error) {
	r := prometheus.NewRegistry()
	if err := n.gatherer.Register(l.Kind().String(), r); err != nil {
		return nil, fmt.Errorf("failed to register %s metrics: %w", l.Kind(), err)
	}
	opts = append(opts, registry.WithTracer(n.tracer), registry.WithReplayGuard(n.seen))
	if n.config.WebSocket.Enabled {
		events := ws.NewWebSocketServer(n.log, n.config.WebSocket)
		n.events = append(n.events, events)
		opts = append(opts, registry.WithSubscriptions(events))
	}
	return registry.New(rules, l, n.log, r, opts...)
}

func (n *Node) initServer() error {
	listener, err := net.Listen("tcp", n.config.HTTP.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", n.config.HTTP.ListenAddress, err)
	}
	n.listener = listener
	n.server = server.New(server.BaseURL, n.log, listener, n.config.HTTP, &server.RequestLogger{Log: n.log})

	parser := registry.NewParser()
	backends := []*api.Backend{
		{Engine: n.base, Parser: parser, Program: n.program, Tracer: n.tracer, Log: n.log},
		{Engine: n.ephemeral, Parser: parser, Tracer: n.tracer, Log: n.log},
	}
	for i, backend := range backends {
		factories := []api.HandlerFactory[*api.Backend]{jsonrpc.JSONRPCServerFactory{}}
		if n.config.WebSocket.Enabled {
			factories = append(factories, ws.NewWebSocketServerFactory(n.events[i]))
		}
		if err := api.Register(n.server, backend, factories...); err != nil {
			return err
		}
	}
	return n.server.AddRoute(
		promhttp.HandlerFor(n.gatherer, promhttp.HandlerOpts{}),
		metricsRoute,
		"",
	)
}

// Run serves requests and checkpoints delegated accounts until [ctx] is
// done or either fails.
func (n *Node) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(n.server.Dispatch)
	g.Go(func() error {
		return n.program.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return n.server.Shutdown()
	})
	n.log.Info("node running", zap.Stringer("address", n.listener.Addr()))
	return g.Wait()
}

// Address is the address the API listens on.
func (n *Node) Address() string {
	return n.listener.Addr().String()
}

func (n *Node) Base() *registry.Engine {
	return n.base
}

func (n *Node) Ephemeral() *registry.Engine {
	return n.ephemeral
}

func (n *Node) Program() *delegation.Program {
	return n.program
}

func (n *Node) Gatherer() metrics.MultiGatherer {
	return n.gatherer
}

// Close releases the venues. Run must have returned.
func (n *Node) Close() error {
	errs := wrappers.Errs{}
	for _, events := range n.events {
		errs.Add(events.Close())
	}
	if n.listener != nil {
		// Shutdown already closes the listener when Run was called.
		if err := n.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs.Add(err)
		}
	}
	if n.ephemeralLedger != nil {
		errs.Add(n.ephemeralLedger.Close())
	}
	if n.baseLedger != nil {
		errs.Add(n.baseLedger.Close())
	}
	errs.Add(n.tracer.Close())
	return errs.Err
}
