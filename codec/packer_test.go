// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fxregistry/consts"
)

func TestPackerValues(t *testing.T) {
	require := require.New(t)

	addr := CreateAddress(3, ids.GenerateTestID())
	id := ids.GenerateTestID()

	wp := NewWriter(64, consts.NetworkSizeLimit)
	wp.PackByte(9)
	wp.PackAddress(addr)
	wp.PackID(id)
	wp.PackString("BankA")
	wp.PackUint64(1450)
	wp.PackInt64(-5)
	wp.PackBool(true)
	wp.PackBytes([]byte{1, 2, 3})
	require.NoError(wp.Err())

	rp := NewReader(wp.Bytes(), consts.NetworkSizeLimit)
	require.Equal(byte(9), rp.UnpackByte())
	var gotAddr Address
	rp.UnpackAddress(true, &gotAddr)
	require.Equal(addr, gotAddr)
	var gotID ids.ID
	rp.UnpackID(true, &gotID)
	require.Equal(id, gotID)
	require.Equal("BankA", rp.UnpackString(true))
	require.Equal(uint64(1450), rp.UnpackUint64(true))
	require.Equal(int64(-5), rp.UnpackInt64(true))
	require.True(rp.UnpackBool())
	var b []byte
	rp.UnpackBytes(-1, true, &b)
	require.Equal([]byte{1, 2, 3}, b)
	require.True(rp.Empty())
	require.NoError(rp.Err())
}

func TestPackerRequiredUnpack(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(AddressLen, AddressLen)
	wp.PackAddress(EmptyAddress)
	require.NoError(wp.Err())

	rp := NewReader(wp.Bytes(), AddressLen)
	var addr Address
	rp.UnpackAddress(true, &addr)
	require.ErrorIs(rp.Err(), ErrFieldNotPopulated)
}

func TestPackerLimit(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(0, consts.Uint64Len)
	wp.PackUint64(1)
	wp.PackUint64(2)
	require.Error(wp.Err())
}
