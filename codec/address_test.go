// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestCreateAddress(t *testing.T) {
	require := require.New(t)

	id := ids.GenerateTestID()
	addr := CreateAddress(7, id)
	require.Equal(uint8(7), addr.TypeID())
	require.Equal(id[:], addr[1:])
}

func TestParseAddress(t *testing.T) {
	require := require.New(t)

	addr := CreateAddress(1, ids.GenerateTestID())

	parsed, err := ParseAddress(addr.String())
	require.NoError(err)
	require.Equal(addr, parsed)

	// Prefix is optional
	parsed, err = ParseAddress(addr.String()[2:])
	require.NoError(err)
	require.Equal(addr, parsed)

	_, err = ParseAddress("0x0102")
	require.ErrorIs(err, ErrInvalidSize)

	_, err = ParseAddress("zz")
	require.Error(err)
}

func TestAddressJSON(t *testing.T) {
	require := require.New(t)

	type wrapper struct {
		Addr Address `json:"addr"`
	}
	w := wrapper{Addr: CreateAddress(2, ids.GenerateTestID())}

	b, err := json.Marshal(w)
	require.NoError(err)
	require.Contains(string(b), w.Addr.String())

	var decoded wrapper
	require.NoError(json.Unmarshal(b, &decoded))
	require.Equal(w, decoded)
}

func TestToAddressSize(t *testing.T) {
	_, err := ToAddress(make([]byte, AddressLen-1))
	require.ErrorIs(t, err, ErrInvalidSize)
}
