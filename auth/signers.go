// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/fxregistry/codec"
)

// Signers is the verified set of principals that signed a request. The
// actor is the first signer and pays for any account the request creates.
type Signers struct {
	actor codec.Address
	all   set.Set[codec.Address]
}

func NewSigners(actor codec.Address, others ...codec.Address) *Signers {
	all := set.Of(others...)
	all.Add(actor)
	return &Signers{actor: actor, all: all}
}

func (s *Signers) Actor() codec.Address {
	return s.actor
}

// Contains reports whether [addr] is among the signers.
func (s *Signers) Contains(addr codec.Address) bool {
	return s.all.Contains(addr)
}

func (s *Signers) Len() int {
	return s.all.Len()
}

func (s *Signers) List() []codec.Address {
	return s.all.List()
}
