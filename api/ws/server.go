// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"encoding/json"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/fxregistry/api"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/pubsub"
	"github.com/ava-labs/fxregistry/registry"
)

const Endpoint = "/events"

var (
	_ api.HandlerFactory[*api.Backend] = (*WebSocketServerFactory)(nil)
	_ registry.Subscription            = (*WebSocketServer)(nil)
)

type Config struct {
	Enabled       bool `json:"enabled" mapstructure:"enabled"`
	pubsub.Config `mapstructure:",squash"`
}

func NewDefaultConfig() Config {
	return Config{
		Enabled: true,
		Config:  pubsub.NewDefaultConfig(),
	}
}

// EventMessage is the wire form of a registry event.
type EventMessage struct {
	Venue     ledger.Kind     `json:"venue"`
	Timestamp int64           `json:"timestamp"`
	Actor     codec.Address   `json:"actor"`
	Action    string          `json:"action"`
	Result    json.RawMessage `json:"result"`
}

// WebSocketServer streams every accepted registry event to its clients.
// Clients only listen; inbound messages are ignored.
type WebSocketServer struct {
	log logging.Logger
	s   *pubsub.Server
}

func NewWebSocketServer(log logging.Logger, cfg Config) *WebSocketServer {
	return &WebSocketServer{
		log: log,
		s:   pubsub.New(log, cfg.Config, nil),
	}
}

func (w *WebSocketServer) Accept(_ context.Context, e *registry.Event) error {
	result, err := json.Marshal(e.Result)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(&EventMessage{
		Venue:     e.Venue,
		Timestamp: e.Timestamp,
		Actor:     e.Actor,
		Action:    registry.ActionName(e.Action.GetTypeID()),
		Result:    result,
	})
	if err != nil {
		return err
	}
	w.s.Broadcast(msg)
	return nil
}

// Subscribers is the number of connected clients.
func (w *WebSocketServer) Subscribers() int {
	return w.s.Len()
}

func (w *WebSocketServer) Close() error {
	w.s.Close()
	return nil
}

type WebSocketServerFactory struct {
	server *WebSocketServer
}

func NewWebSocketServerFactory(server *WebSocketServer) *WebSocketServerFactory {
	return &WebSocketServerFactory{server: server}
}

func (w WebSocketServerFactory) New(backend *api.Backend) (api.Handler, error) {
	return api.Handler{
		Path:    api.VenuePath(backend) + Endpoint,
		Handler: w.server.s,
	}, nil
}
