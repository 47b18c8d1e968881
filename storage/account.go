// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/consts"
	"github.com/ava-labs/fxregistry/state"
)

// MaxAccountSpace bounds the data length of any account.
const MaxAccountSpace = 10 * 1024

// Account is the unit of storage. Only [Owner] may rewrite [Data], whose
// length is fixed when the account is created.
type Account struct {
	Owner codec.Address
	Data  []byte
}

func (a *Account) Size() int {
	return codec.AddressLen + codec.BytesLen(a.Data)
}

func (a *Account) Marshal(p *codec.Packer) {
	p.PackAddress(a.Owner)
	p.PackBytes(a.Data)
}

func UnmarshalAccount(b []byte) (*Account, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	var a Account
	p.UnpackAddress(true, &a.Owner)
	p.UnpackBytes(MaxAccountSpace, false, &a.Data)
	if !p.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptLayout, len(b)-p.Offset())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccount returns the account stored at [addr] or ErrAccountNotFound.
func GetAccount(ctx context.Context, im state.Immutable, addr codec.Address) (*Account, error) {
	v, err := im.GetValue(ctx, AccountKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if err != nil {
		return nil, err
	}
	return UnmarshalAccount(v)
}

// PutAccount overwrites the account at [addr] without any ownership check.
// It is reserved for moving accounts between venues.
func PutAccount(ctx context.Context, mu state.Mutable, addr codec.Address, a *Account) error {
	p := codec.NewWriter(a.Size(), consts.NetworkSizeLimit)
	a.Marshal(p)
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, AccountKey(addr), p.Bytes())
}

func DeleteAccount(ctx context.Context, mu state.Mutable, addr codec.Address) error {
	return mu.Remove(ctx, AccountKey(addr))
}

// CreateAccount allocates a zeroed account of [space] bytes owned by
// [owner]. It fails with ErrAlreadyExists if [addr] is taken.
func CreateAccount(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	owner codec.Address,
	space int,
) error {
	if space <= 0 || space > MaxAccountSpace {
		return fmt.Errorf("%w: %d", ErrInvalidSpace, space)
	}
	_, err := mu.GetValue(ctx, AccountKey(addr))
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, addr)
	case !errors.Is(err, database.ErrNotFound):
		return err
	}
	return PutAccount(ctx, mu, addr, &Account{Owner: owner, Data: make([]byte, space)})
}

// WriteAccountData replaces the data of the account at [addr]. [writer] must
// own the account and [data] must fit its space; the rest is zero-filled.
func WriteAccountData(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	writer codec.Address,
	data []byte,
) error {
	a, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return err
	}
	if a.Owner != writer {
		return fmt.Errorf("%w: owner=%s writer=%s", ErrAccountNotOwned, a.Owner, writer)
	}
	if len(data) > len(a.Data) {
		return fmt.Errorf("%w: %d > %d", ErrAccountDataTooLarge, len(data), len(a.Data))
	}
	n := copy(a.Data, data)
	clear(a.Data[n:])
	return PutAccount(ctx, mu, addr, a)
}

// AssignOwner hands the account at [addr] from [from] to [to].
func AssignOwner(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	from codec.Address,
	to codec.Address,
) error {
	a, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return err
	}
	if a.Owner != from {
		return fmt.Errorf("%w: owner=%s expected=%s", ErrAccountNotOwned, a.Owner, from)
	}
	a.Owner = to
	return PutAccount(ctx, mu, addr, a)
}
