// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"

	"github.com/hdevalence/ed25519consensus"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/crypto"
)

type (
	PublicKey  [ed25519.PublicKeySize]byte
	PrivateKey [ed25519.PrivateKeySize]byte
	Signature  [ed25519.SignatureSize]byte
)

// Verification follows ZIP-215 (https://zips.z.cash/zip-0215), which gives an
// explicit validity criteria and allows batch verification of the signer set
// attached to a request.
const (
	PublicKeyLen  = ed25519.PublicKeySize
	PrivateKeyLen = ed25519.PrivateKeySize
	// PrivateKeySeedLen is defined because ed25519.PrivateKey
	// is formatted as privateKey = seed|publicKey. We use this const
	// to extract the publicKey below.
	PrivateKeySeedLen = ed25519.SeedSize
	SignatureLen      = ed25519.SignatureSize

	// MinBatchSize is the smallest signer set worth batch verifying.
	MinBatchSize = 4
)

var (
	EmptyPublicKey  = PublicKey{}
	EmptyPrivateKey = PrivateKey{}
	EmptySignature  = Signature{}
)

// GeneratePrivateKey returns a Ed25519 PrivateKey.
func GeneratePrivateKey() (PrivateKey, error) {
	_, k, err := ed25519.GenerateKey(nil)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return PrivateKey(k), nil
}

// PublicKey returns a PublicKey associated with the Ed25519 PrivateKey p.
// The PublicKey is the last 32 bytes of p.
func (p PrivateKey) PublicKey() PublicKey {
	return PublicKey(p[PrivateKeySeedLen:])
}

// Hex returns the hex encoding of p.
func (p PrivateKey) Hex() string {
	return codec.ToHex(p[:])
}

// HexToPrivateKey parses a hex encoded private key.
func HexToPrivateKey(s string) (PrivateKey, error) {
	b, err := codec.LoadHex(s, PrivateKeyLen)
	if err != nil {
		return EmptyPrivateKey, crypto.ErrInvalidPrivateKey
	}
	return PrivateKey(b), nil
}

// Sign returns a valid signature for msg using pk.
func Sign(msg []byte, pk PrivateKey) Signature {
	sig := ed25519.Sign(pk[:], msg)
	return Signature(sig)
}

// Verify returns whether s is a valid signature of msg by p.
func Verify(msg []byte, p PublicKey, s Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}

type Batch struct {
	bv ed25519consensus.BatchVerifier
}

func NewBatch(size int) *Batch {
	return &Batch{bv: ed25519consensus.NewPreallocatedBatchVerifier(size)}
}

func (b *Batch) Add(msg []byte, p PublicKey, s Signature) {
	b.bv.Add(p[:], msg, s[:])
}

// Verify returns nil only if every added signature is valid.
func (b *Batch) Verify() error {
	if !b.bv.Verify() {
		return crypto.ErrInvalidSignature
	}
	return nil
}
