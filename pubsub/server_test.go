// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, url string) *websocket.Conn {
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return conn
}

func TestServerBroadcast(t *testing.T) {
	require := require.New(t)

	s := New(logging.NoLog{}, NewDefaultConfig(), nil)
	srv := httptest.NewServer(s)
	defer srv.Close()

	a := dial(t, srv.URL)
	defer a.Close()
	b := dial(t, srv.URL)
	defer b.Close()
	require.Eventually(func() bool { return s.Len() == 2 }, 5*time.Second, 10*time.Millisecond)

	s.Broadcast([]byte("rate"))
	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
		typ, msg, err := conn.ReadMessage()
		require.NoError(err)
		require.Equal(websocket.TextMessage, typ)
		require.Equal("rate", string(msg))
	}

	require.NoError(a.Close())
	require.Eventually(func() bool { return s.Len() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestServerCallback(t *testing.T) {
	require := require.New(t)

	s := New(logging.NoLog{}, NewDefaultConfig(), func(msg []byte, c *Connection) {
		c.Send(append([]byte("echo:"), msg...))
	})
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv.URL)
	defer conn.Close()

	require.NoError(conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	require.NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(err)
	require.Equal("echo:ping", string(msg))
}

func TestConnectionSendAfterClose(t *testing.T) {
	require := require.New(t)

	s := New(logging.NoLog{}, NewDefaultConfig(), nil)
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv.URL)
	defer conn.Close()
	require.Eventually(func() bool { return s.Len() == 1 }, 5*time.Second, 10*time.Millisecond)

	held := s.conns.Conns()
	s.Close()
	require.Zero(s.Len())
	for _, c := range held {
		require.False(c.Send([]byte("late")))
	}
}

func TestServerDropsWhenQueueFull(t *testing.T) {
	require := require.New(t)

	config := NewDefaultConfig()
	config.MaxPendingMessages = 1
	s := New(logging.NoLog{}, config, nil)

	// No pumps run, so nothing drains the queue.
	conn := newConnection(s, nil)
	s.conns.Add(conn)

	s.Broadcast([]byte("first"))
	require.Zero(s.Dropped())
	s.Broadcast([]byte("second"))
	require.Equal(uint64(1), s.Dropped())

	conn.deactivate()
	s.Broadcast([]byte("third"))
	require.Equal(uint64(2), s.Dropped())
}
