// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Callback is invoked for every message a connection receives.
type Callback func([]byte, *Connection)

// Connection is a single websocket peer.
type Connection struct {
	s *Server

	// The websocket connection.
	conn *websocket.Conn

	lock   sync.Mutex
	active bool
	// Buffered channel of outbound messages.
	send chan []byte
}

func newConnection(s *Server, conn *websocket.Conn) *Connection {
	return &Connection{
		s:      s,
		conn:   conn,
		active: true,
		send:   make(chan []byte, s.config.MaxPendingMessages),
	}
}

// deactivate stops the connection from accepting new messages.
func (c *Connection) deactivate() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.active {
		return
	}
	c.active = false
	close(c.send)
}

// Send queues [msg] and returns whether it was accepted. Messages are
// dropped once MaxPendingMessages are queued.
func (c *Connection) Send(msg []byte) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.active {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// readPump delivers inbound messages to the server callback. It is the only
// reader of [c.conn].
func (c *Connection) readPump() {
	defer func() {
		c.s.removeConnection(c)
		c.deactivate()

		// close is called by both the writePump and the readPump so one of them
		// will always error
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(c.s.config.MaxReadMessageSize))
	// SetReadDeadline returns an error if the connection is corrupted
	if err := c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				c.s.log.Debug("unexpected close in websockets",
					zap.Error(err),
				)
			}
			return
		}
		if c.s.callback != nil {
			c.s.callback(msg, c)
		}
	}
}

// writePump drains [c.send] to the peer and keeps it alive with pings. It is
// the only writer of [c.conn].
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.s.config.pingPeriod())
	defer func() {
		c.s.removeConnection(c)
		c.deactivate()
		ticker.Stop()

		// close is called by both the writePump and the readPump so one of them
		// will always error
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
				c.s.log.Debug("closing the connection",
					zap.String("reason", "failed to set the write deadline"),
					zap.Error(err),
				)
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.s.log.Debug("closing the connection",
					zap.String("reason", "failed to write message"),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
				c.s.log.Debug("closing the connection",
					zap.String("reason", "failed to set the write deadline"),
					zap.Error(err),
				)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
