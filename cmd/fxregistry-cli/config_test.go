// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToYAMLKeepsFieldOrder(t *testing.T) {
	require := require.New(t)

	out, err := toYAML(struct {
		Venue string `json:"venue"`
		Rate  uint64 `json:"rate"`
		Actor string `json:"actor"`
	}{
		Venue: "base",
		Rate:  1_550_000,
		Actor: "0x00",
	})
	require.NoError(err)
	require.Equal("venue: base\nrate: 1550000\nactor: \"0x00\"\n", string(out))
}

func TestToYAMLEndpoint(t *testing.T) {
	out, err := toYAML(endpointCmdResponse{Endpoint: "http://127.0.0.1:9650"})
	require.NoError(t, err)
	require.Equal(t, "endpoint: http://127.0.0.1:9650\n", string(out))
}
