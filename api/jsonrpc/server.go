// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/fxregistry/api"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/registry"
	"github.com/ava-labs/fxregistry/server"
	"github.com/ava-labs/fxregistry/storage"
)

var (
	_ api.HandlerFactory[*api.Backend] = (*JSONRPCServerFactory)(nil)

	ErrNoDelegationProgram = errors.New("delegation program not served at this venue")
)

type JSONRPCServerFactory struct{}

func (JSONRPCServerFactory) New(backend *api.Backend) (api.Handler, error) {
	handler, err := server.NewJSONRPCHandler(api.Name, NewJSONRPCServer(backend))
	if err != nil {
		return api.Handler{}, err
	}
	return api.Handler{
		Path:    api.VenuePath(backend),
		Handler: handler,
	}, nil
}

type JSONRPCServer struct {
	backend *api.Backend
}

func NewJSONRPCServer(backend *api.Backend) *JSONRPCServer {
	return &JSONRPCServer{backend: backend}
}

type PingReply struct {
	Success bool        `json:"success"`
	Venue   ledger.Kind `json:"venue"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	j.backend.Log.Debug("ping")
	reply.Success = true
	reply.Venue = j.backend.Engine.Venue()
	return nil
}

type RulesReply struct {
	Rules    *registry.Rules `json:"rules"`
	Registry codec.Address   `json:"registry"`
}

func (j *JSONRPCServer) Rules(_ *http.Request, _ *struct{}, reply *RulesReply) error {
	rules := j.backend.Engine.Rules()
	reply.Rules = rules
	reply.Registry = rules.RegistryAddress()
	return nil
}

type RegistryReply struct {
	Registry *storage.Registry `json:"registry"`
}

func (j *JSONRPCServer) Registry(req *http.Request, _ *struct{}, reply *RegistryReply) error {
	ctx, span := j.backend.Tracer.Start(req.Context(), "JSONRPCServer.Registry")
	defer span.End()

	r, err := j.backend.Engine.Registry(ctx)
	if err != nil {
		return err
	}
	reply.Registry = r
	return nil
}

type OracleArgs struct {
	Credential codec.Address `json:"credential"`
}

type OracleReply struct {
	Oracle *storage.Oracle `json:"oracle"`
}

func (j *JSONRPCServer) Oracle(req *http.Request, args *OracleArgs, reply *OracleReply) error {
	ctx, span := j.backend.Tracer.Start(req.Context(), "JSONRPCServer.Oracle")
	defer span.End()

	o, err := j.backend.Engine.Oracle(ctx, args.Credential)
	if err != nil {
		return err
	}
	reply.Oracle = o
	return nil
}

type LocationReply struct {
	Venue    ledger.Kind       `json:"venue"`
	Location registry.Location `json:"location"`
}

func (j *JSONRPCServer) Location(req *http.Request, _ *struct{}, reply *LocationReply) error {
	ctx, span := j.backend.Tracer.Start(req.Context(), "JSONRPCServer.Location")
	defer span.End()

	l, err := j.backend.Engine.Location(ctx)
	if err != nil {
		return err
	}
	reply.Venue = j.backend.Engine.Venue()
	reply.Location = l
	return nil
}

type DelegationArgs struct {
	Account codec.Address `json:"account"`
}

type DelegationReply struct {
	Record *delegation.Record `json:"record"`
}

func (j *JSONRPCServer) Delegation(req *http.Request, args *DelegationArgs, reply *DelegationReply) error {
	ctx, span := j.backend.Tracer.Start(req.Context(), "JSONRPCServer.Delegation")
	defer span.End()

	if j.backend.Program == nil {
		return ErrNoDelegationProgram
	}
	account := args.Account
	if account == codec.EmptyAddress {
		account = j.backend.Engine.Rules().RegistryAddress()
	}
	r, err := j.backend.Program.Record(ctx, account)
	if err != nil {
		return err
	}
	reply.Record = r
	return nil
}

type SubmitTxArgs struct {
	Tx []byte `json:"tx"`
}

type SubmitTxReply struct {
	TxID   ids.ID          `json:"txId"`
	Action string          `json:"action"`
	Result json.RawMessage `json:"result"`
}

func (j *JSONRPCServer) SubmitTx(req *http.Request, args *SubmitTxArgs, reply *SubmitTxReply) error {
	ctx, span := j.backend.Tracer.Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	tx, err := j.backend.Parser.UnmarshalTransaction(args.Tx)
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal on public service", err)
	}
	result, err := j.backend.Engine.Submit(ctx, tx)
	if err != nil {
		j.backend.Log.Debug("transaction rejected",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	reply.TxID = tx.ID()
	reply.Action = registry.ActionName(tx.Action.GetTypeID())
	reply.Result = b
	return nil
}
