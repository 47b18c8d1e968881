// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/crypto/ed25519"
)

// MaxSigners bounds the number of signatures attached to one request.
const MaxSigners = 8

// Verifier turns the signatures attached to a request into the set of
// principals that authorized it.
type Verifier struct{}

func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks every signature over [msg]. Large signer sets are batch
// verified. The first signature names the actor.
func (*Verifier) Verify(ctx context.Context, msg []byte, auths []*ED25519) (*Signers, error) {
	switch {
	case len(auths) == 0:
		return nil, ErrNoSigners
	case len(auths) > MaxSigners:
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySigners, len(auths), MaxSigners)
	}

	seen := set.NewSet[codec.Address](len(auths))
	for _, a := range auths {
		actor := a.Actor()
		if seen.Contains(actor) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSigner, actor)
		}
		seen.Add(actor)
	}

	if len(auths) >= ed25519.MinBatchSize {
		batch := ed25519.NewBatch(len(auths))
		for _, a := range auths {
			batch.Add(msg, a.Signer, a.Signature)
		}
		if err := batch.Verify(); err != nil {
			return nil, err
		}
	} else {
		for _, a := range auths {
			if err := a.Verify(ctx, msg); err != nil {
				return nil, err
			}
		}
	}

	others := make([]codec.Address, 0, len(auths)-1)
	for _, a := range auths[1:] {
		others = append(others, a.Actor())
	}
	return NewSigners(auths[0].Actor(), others...), nil
}
