// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

const (
	readBufferSize  = units.KiB
	writeBufferSize = units.KiB
)

type Config struct {
	// Maximum number of pending messages to send to a peer.
	MaxPendingMessages int `json:"maxPendingMessages" mapstructure:"maxPendingMessages"`
	// Maximum message size in bytes allowed from peer.
	MaxReadMessageSize int `json:"maxReadMessageSize" mapstructure:"maxReadMessageSize"`
	// Time allowed to write a message to the peer.
	WriteWait time.Duration `json:"writeWait" mapstructure:"writeWait"`
	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration `json:"pongWait" mapstructure:"pongWait"`
}

func NewDefaultConfig() Config {
	return Config{
		MaxPendingMessages: 1024,
		MaxReadMessageSize: 10 * units.KiB,
		WriteWait:          10 * time.Second,
		PongWait:           60 * time.Second,
	}
}

// pingPeriod must be less than pongWait.
func (c Config) pingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}
