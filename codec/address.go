// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

const AddressLen = 33

// Address is the opaque identity of a principal or an account. The first
// byte identifies how the remaining 32 bytes were produced (a public key
// hash or a program-derived hash).
type Address [AddressLen]byte

var EmptyAddress = Address{}

// CreateAddress returns [Address] made from concatenating
// [typeID] with [id].
func CreateAddress(typeID uint8, id ids.ID) Address {
	var a Address
	a[0] = typeID
	copy(a[1:], id[:])
	return a
}

// ToAddress returns the Address stored in b. b must be exactly
// AddressLen bytes long.
func ToAddress(b []byte) (Address, error) {
	if len(b) != AddressLen {
		return EmptyAddress, fmt.Errorf("%w: %d != %d", ErrInvalidSize, len(b), AddressLen)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// ParseAddress decodes a hex address, with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	b, err := LoadHex(s, AddressLen)
	if err != nil {
		return EmptyAddress, err
	}
	return ToAddress(b)
}

// TypeID returns the leading type byte of a.
func (a Address) TypeID() uint8 {
	return a[0]
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a hex-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
