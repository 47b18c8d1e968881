// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/near/borsh-go"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/consts"
)

const (
	DiscriminatorLen = 8

	// DefaultRegistrySpace reserves room for the discriminator, the
	// administrator and 1 KiB of oracle entries.
	DefaultRegistrySpace = DiscriminatorLen + codec.AddressLen + 1024

	headerLen = DiscriminatorLen + consts.IntLen
)

// RegistryDiscriminator tags registry account data.
var RegistryDiscriminator = discriminator("RateData")

func discriminator(name string) [DiscriminatorLen]byte {
	var d [DiscriminatorLen]byte
	copy(d[:], hashing.ComputeHash256([]byte("account:"+name)))
	return d
}

type Oracle struct {
	Name        string        `json:"name"`
	Credential  codec.Address `json:"credential"`
	Rate        uint64        `json:"rate"`
	LastUpdated int64         `json:"lastUpdated"`
}

// Registry is the singleton record. Oracles keep insertion order and are
// never removed.
type Registry struct {
	Administrator codec.Address `json:"administrator"`
	Oracles       []Oracle      `json:"oracles"`
}

// Find returns the index of the oracle holding [credential] or -1.
func (r *Registry) Find(credential codec.Address) int {
	for i := range r.Oracles {
		if r.Oracles[i].Credential == credential {
			return i
		}
	}
	return -1
}

// EncodeRegistry lays out [r] as the discriminator, the uint32 body length
// and the borsh body.
func EncodeRegistry(r *Registry) ([]byte, error) {
	body, err := borsh.Serialize(*r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, headerLen+len(body))
	copy(b, RegistryDiscriminator[:])
	binary.BigEndian.PutUint32(b[DiscriminatorLen:], uint32(len(body)))
	copy(b[headerLen:], body)
	return b, nil
}

// DecodeRegistry parses account data written by EncodeRegistry. Padding
// after the body is ignored.
func DecodeRegistry(data []byte) (*Registry, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptLayout, len(data))
	}
	if !bytes.Equal(data[:DiscriminatorLen], RegistryDiscriminator[:]) {
		return nil, ErrInvalidDiscriminator
	}
	l := int(binary.BigEndian.Uint32(data[DiscriminatorLen:]))
	if l > len(data)-headerLen {
		return nil, fmt.Errorf("%w: body length %d exceeds %d", ErrCorruptLayout, l, len(data)-headerLen)
	}
	var r Registry
	if err := borsh.Deserialize(&r, data[headerLen:headerLen+l]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptLayout, err)
	}
	if r.Oracles == nil {
		r.Oracles = []Oracle{}
	}
	return &r, nil
}

// EncodedRegistrySize is the number of account bytes [r] occupies.
func EncodedRegistrySize(r *Registry) (int, error) {
	body, err := borsh.Serialize(*r)
	if err != nil {
		return 0, err
	}
	return headerLen + len(body), nil
}
