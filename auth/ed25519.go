// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"fmt"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/crypto"
	"github.com/ava-labs/fxregistry/crypto/ed25519"
	"github.com/ava-labs/fxregistry/utils"
)

const ED25519Size = 1 + ed25519.PublicKeyLen + ed25519.SignatureLen

// ED25519 is a single signature over a request digest.
type ED25519 struct {
	Signer    ed25519.PublicKey `json:"signer"`
	Signature ed25519.Signature `json:"signature"`

	addr codec.Address
}

func (d *ED25519) address() codec.Address {
	if d.addr == codec.EmptyAddress {
		d.addr = NewED25519Address(d.Signer)
	}
	return d.addr
}

func (*ED25519) GetTypeID() uint8 {
	return ED25519ID
}

func (d *ED25519) Verify(_ context.Context, msg []byte) error {
	if !ed25519.Verify(msg, d.Signer, d.Signature) {
		return crypto.ErrInvalidSignature
	}
	return nil
}

// Actor is the identity proven by this signature.
func (d *ED25519) Actor() codec.Address {
	return d.address()
}

func (*ED25519) Size() int {
	return ED25519Size
}

func (d *ED25519) Marshal(p *codec.Packer) {
	p.PackByte(ED25519ID)
	p.PackFixedBytes(d.Signer[:])
	p.PackFixedBytes(d.Signature[:])
}

func UnmarshalED25519(p *codec.Packer) (*ED25519, error) {
	if typeID := p.UnpackByte(); typeID != ED25519ID {
		return nil, fmt.Errorf("%w: %d != %d", ErrUnexpectedAuthID, typeID, ED25519ID)
	}
	var d ED25519
	signer := d.Signer[:] // avoid allocating additional memory
	p.UnpackFixedBytes(ed25519.PublicKeyLen, &signer)
	signature := d.Signature[:] // avoid allocating additional memory
	p.UnpackFixedBytes(ed25519.SignatureLen, &signature)
	return &d, p.Err()
}

// ED25519Factory signs request digests with a private key.
type ED25519Factory struct {
	priv ed25519.PrivateKey
}

func NewED25519Factory(priv ed25519.PrivateKey) *ED25519Factory {
	return &ED25519Factory{priv}
}

func (d *ED25519Factory) Sign(msg []byte) *ED25519 {
	sig := ed25519.Sign(msg, d.priv)
	return &ED25519{Signer: d.priv.PublicKey(), Signature: sig}
}

func (d *ED25519Factory) Address() codec.Address {
	return NewED25519Address(d.priv.PublicKey())
}

func NewED25519Address(pk ed25519.PublicKey) codec.Address {
	return codec.CreateAddress(ED25519ID, utils.ToID(pk[:]))
}
