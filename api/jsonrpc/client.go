// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ava-labs/fxregistry/api"
	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/registry"
	"github.com/ava-labs/fxregistry/requester"
	"github.com/ava-labs/fxregistry/server"
	"github.com/ava-labs/fxregistry/storage"
)

// DefaultTxTTL is how far in the future SubmitAction sets the expiry.
const DefaultTxTTL = 30 * time.Second

type JSONRPCClient struct {
	requester *requester.EndpointRequester
	venue     ledger.Kind

	l      sync.Mutex
	domain *registry.Domain
}

// NewJSONRPCClient returns a client for the [venue] endpoint of the node
// at [uri].
func NewJSONRPCClient(uri string, venue ledger.Kind) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += server.BaseURL + "/" + api.Name + "/" + venue.String()
	req := requester.New(uri, api.Name)
	return &JSONRPCClient{requester: req, venue: venue}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Rules(ctx context.Context) (*registry.Rules, codec.Address, error) {
	resp := new(RulesReply)
	err := cli.requester.SendRequest(
		ctx,
		"rules",
		nil,
		resp,
	)
	return resp.Rules, resp.Registry, err
}

// Domain returns the domain transactions for this venue are signed for. It
// is fetched once and cached.
func (cli *JSONRPCClient) Domain(ctx context.Context) (registry.Domain, error) {
	cli.l.Lock()
	defer cli.l.Unlock()

	if cli.domain != nil {
		return *cli.domain, nil
	}
	rules, _, err := cli.Rules(ctx)
	if err != nil {
		return registry.Domain{}, err
	}
	cli.domain = &registry.Domain{ProgramID: rules.ProgramID, Venue: cli.venue}
	return *cli.domain, nil
}

func (cli *JSONRPCClient) Registry(ctx context.Context) (*storage.Registry, error) {
	resp := new(RegistryReply)
	err := cli.requester.SendRequest(
		ctx,
		"registry",
		nil,
		resp,
	)
	return resp.Registry, err
}

func (cli *JSONRPCClient) Oracle(ctx context.Context, credential codec.Address) (*storage.Oracle, error) {
	resp := new(OracleReply)
	err := cli.requester.SendRequest(
		ctx,
		"oracle",
		&OracleArgs{Credential: credential},
		resp,
	)
	return resp.Oracle, err
}

func (cli *JSONRPCClient) Location(ctx context.Context) (registry.Location, error) {
	resp := new(LocationReply)
	err := cli.requester.SendRequest(
		ctx,
		"location",
		nil,
		resp,
	)
	return resp.Location, err
}

// Delegation returns the delegation record of [account], or of the registry
// when [account] is empty.
func (cli *JSONRPCClient) Delegation(ctx context.Context, account codec.Address) (*delegation.Record, error) {
	resp := new(DelegationReply)
	err := cli.requester.SendRequest(
		ctx,
		"delegation",
		&DelegationArgs{Account: account},
		resp,
	)
	return resp.Record, err
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, tx *registry.Transaction) (*SubmitTxReply, error) {
	resp := new(SubmitTxReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: tx.Bytes()},
		resp,
	)
	return resp, err
}

// SubmitAction signs [action] with [factories] and submits it. The first
// factory is the actor.
func (cli *JSONRPCClient) SubmitAction(
	ctx context.Context,
	action registry.Action,
	factories ...*auth.ED25519Factory,
) (*SubmitTxReply, error) {
	domain, err := cli.Domain(ctx)
	if err != nil {
		return nil, err
	}
	expiry := time.Now().Add(DefaultTxTTL).UnixMilli()
	tx, err := registry.NewTransaction(domain, expiry, action).Sign(factories...)
	if err != nil {
		return nil, err
	}
	return cli.SubmitTx(ctx, tx)
}
