// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/consts"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/utils"
)

// Domain binds a transaction to one venue of one deployment, so a signature
// collected for one venue is never valid at another.
type Domain struct {
	ProgramID codec.Address `json:"programID"`
	Venue     ledger.Kind   `json:"venue"`
}

const domainLen = codec.AddressLen + consts.ByteLen

// Transaction is an action and the signatures authorizing it. The first
// signature identifies the actor.
type Transaction struct {
	Domain Domain
	// Expiry is the unix millisecond timestamp after which the transaction
	// is rejected.
	Expiry int64
	Action Action
	Auths  []*auth.ED25519

	digest []byte
	bytes  []byte
	id     ids.ID
}

func NewTransaction(domain Domain, expiry int64, action Action) *Transaction {
	return &Transaction{Domain: domain, Expiry: expiry, Action: action}
}

// Digest is the message every signer signs.
func (t *Transaction) Digest() []byte {
	if len(t.digest) > 0 {
		return t.digest
	}
	p := codec.NewWriter(domainLen+consts.Int64Len+consts.ByteLen+t.Action.Size(), consts.NetworkSizeLimit)
	p.PackAddress(t.Domain.ProgramID)
	p.PackByte(byte(t.Domain.Venue))
	p.PackInt64(t.Expiry)
	p.PackByte(t.Action.GetTypeID())
	t.Action.Marshal(p)
	t.digest = p.Bytes()
	return t.digest
}

// Sign attaches a signature from each factory, in order.
func (t *Transaction) Sign(factories ...*auth.ED25519Factory) (*Transaction, error) {
	msg := t.Digest()
	auths := make([]*auth.ED25519, len(factories))
	for i, f := range factories {
		auths[i] = f.Sign(msg)
	}
	tx := &Transaction{Domain: t.Domain, Expiry: t.Expiry, Action: t.Action, Auths: auths}
	b, err := tx.Marshal()
	if err != nil {
		return nil, err
	}
	return tx.init(b), nil
}

func (t *Transaction) init(b []byte) *Transaction {
	t.bytes = b
	t.id = utils.ToID(b)
	return t
}

func (t *Transaction) Size() int {
	return len(t.Digest()) + consts.ByteLen + len(t.Auths)*auth.ED25519Size
}

func (t *Transaction) Marshal() ([]byte, error) {
	if len(t.bytes) > 0 {
		return t.bytes, nil
	}
	if len(t.Auths) > int(consts.MaxUint8) {
		return nil, fmt.Errorf("%w: %d", auth.ErrTooManySigners, len(t.Auths))
	}
	p := codec.NewWriter(t.Size(), consts.NetworkSizeLimit)
	p.PackFixedBytes(t.Digest())
	p.PackByte(uint8(len(t.Auths)))
	for _, a := range t.Auths {
		a.Marshal(p)
	}
	return p.Bytes(), p.Err()
}

func (t *Transaction) Bytes() []byte {
	return t.bytes
}

func (t *Transaction) ID() ids.ID {
	return t.id
}

// UnmarshalTransaction parses a signed transaction. Signatures are not
// verified here.
func (p *Parser) UnmarshalTransaction(b []byte) (*Transaction, error) {
	packer := codec.NewReader(b, consts.NetworkSizeLimit)
	var domain Domain
	packer.UnpackAddress(true, &domain.ProgramID)
	domain.Venue = ledger.Kind(packer.UnpackByte())
	expiry := packer.UnpackInt64(true)
	action, err := p.UnmarshalAction(packer)
	if err != nil {
		return nil, err
	}
	digestLen := packer.Offset()
	count := int(packer.UnpackByte())
	auths := make([]*auth.ED25519, 0, count)
	for i := 0; i < count; i++ {
		a, err := auth.UnmarshalED25519(packer)
		if err != nil {
			return nil, err
		}
		auths = append(auths, a)
	}
	if err := packer.Err(); err != nil {
		return nil, err
	}
	if !packer.Empty() {
		return nil, fmt.Errorf("%w: %d", ErrTrailingBytes, len(b)-packer.Offset())
	}
	tx := &Transaction{
		Domain: domain,
		Expiry: expiry,
		Action: action,
		Auths:  auths,
		digest: b[:digestLen],
	}
	return tx.init(b), nil
}
