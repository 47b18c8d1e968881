// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/consts"
	"github.com/ava-labs/fxregistry/utils"
)

const (
	// Active state
	accountPrefix = 0x0

	// DerivedAddressID marks addresses computed from a program and seeds.
	// No private key exists for them.
	DerivedAddressID uint8 = 0xfe
)

// RegistrySeed is the fixed domain tag the registry address is derived from.
var RegistrySeed = []byte("rate_data")

// AccountKey returns the state key [accountPrefix] + [addr].
func AccountKey(addr codec.Address) []byte {
	k := make([]byte, 1+codec.AddressLen)
	k[0] = accountPrefix
	copy(k[1:], addr[:])
	return k
}

// DeriveAddress deterministically computes the address of an account owned
// by [program] from [seeds].
func DeriveAddress(program codec.Address, seeds ...[]byte) codec.Address {
	size := codec.AddressLen
	for _, s := range seeds {
		size += codec.BytesLen(s)
	}
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	for _, s := range seeds {
		p.PackBytes(s)
	}
	p.PackAddress(program)
	return codec.CreateAddress(DerivedAddressID, utils.ToID(p.Bytes()))
}

// RegistryAddress is the canonical address of the single registry account
// owned by [program].
func RegistryAddress(program codec.Address) codec.Address {
	return DeriveAddress(program, RegistrySeed)
}
