// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package authtest

import (
	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/crypto/ed25519"
)

// Key bundles a private key with its factory and derived address.
type Key struct {
	Private ed25519.PrivateKey
	Factory *auth.ED25519Factory
	Address codec.Address
}

// NewKey generates a fresh ed25519 key for tests.
func NewKey() *Key {
	priv, err := ed25519.GeneratePrivateKey()
	if err != nil {
		panic(err)
	}
	factory := auth.NewED25519Factory(priv)
	return &Key{
		Private: priv,
		Factory: factory,
		Address: factory.Address(),
	}
}

func NewKeys(n int) []*Key {
	keys := make([]*Key, n)
	for i := range keys {
		keys[i] = NewKey()
	}
	return keys
}
