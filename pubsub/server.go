// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var _ http.Handler = (*Server)(nil)

// Server upgrades requests to websocket connections and fans messages out
// to them.
//
// Connect with websocket.DefaultDialer.Dial().
type Server struct {
	log      logging.Logger
	config   Config
	callback Callback
	upgrader websocket.Upgrader

	conns   *Connections
	dropped atomic.Uint64
}

// New returns a new Server. [callback] is invoked for inbound messages if
// not nil.
func New(log logging.Logger, config Config, callback Callback) *Server {
	return &Server{
		log:      log,
		config:   config,
		callback: callback,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		conns: NewConnections(),
	}
}

// ServeHTTP adds a connection to the server and starts its pumps.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := newConnection(s, wsConn)
	s.conns.Add(conn)

	go conn.writePump()
	go conn.readPump()
}

// Publish sends [msg] to every connection in [toConns] still held by [s].
func (s *Server) Publish(msg []byte, toConns *Connections) {
	for _, conn := range toConns.Conns() {
		if !s.conns.Has(conn) {
			continue
		}
		if !conn.Send(msg) {
			s.dropped.Inc()
			s.log.Verbo(
				"dropping message to subscribed connection due to too many pending messages",
			)
		}
	}
}

// Broadcast sends [msg] to every connection.
func (s *Server) Broadcast(msg []byte) {
	s.Publish(msg, s.conns)
}

// Dropped returns the number of messages discarded because a connection had
// too many pending messages or was already closing.
func (s *Server) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Server) Len() int {
	return s.conns.Len()
}

// Close drops every connection.
func (s *Server) Close() {
	for _, conn := range s.conns.Conns() {
		s.removeConnection(conn)
		conn.deactivate()
	}
}

func (s *Server) removeConnection(conn *Connection) {
	s.conns.Remove(conn)
}
