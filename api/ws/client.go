// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/ava-labs/fxregistry/api"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/server"
)

type WebSocketClient struct {
	conn *websocket.Conn
}

// NewWebSocketClient subscribes to the events of [venue] on the node at
// [uri].
func NewWebSocketClient(ctx context.Context, uri string, venue ledger.Kind) (*WebSocketClient, error) {
	uri = strings.TrimSuffix(uri, "/")
	uri = strings.Replace(uri, "http", "ws", 1)
	uri += server.BaseURL + "/" + api.Name + "/" + venue.String() + Endpoint
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, uri, nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Body.Close(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &WebSocketClient{conn: conn}, nil
}

// Listen blocks until the next event arrives.
func (c *WebSocketClient) Listen() (*EventMessage, error) {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var e EventMessage
	if err := json.Unmarshal(msg, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *WebSocketClient) Close() error {
	return c.conn.Close()
}
