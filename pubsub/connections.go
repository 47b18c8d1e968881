// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
)

// Connections is a concurrent set of connections.
type Connections struct {
	lock  sync.RWMutex
	conns set.Set[*Connection]
}

func NewConnections() *Connections {
	return &Connections{}
}

func (c *Connections) Conns() []*Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.List()
}

func (c *Connections) Has(conn *Connection) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.Contains(conn)
}

func (c *Connections) Remove(conn *Connection) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.conns.Remove(conn)
}

func (c *Connections) Add(conn *Connection) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.conns.Add(conn)
}

func (c *Connections) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.Len()
}
