// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegation

import (
	"context"
	"time"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/consts"
	"github.com/ava-labs/fxregistry/state"
	"github.com/ava-labs/fxregistry/storage"
)

// RecordSpace is the data length of a delegation record account.
const RecordSpace = codec.AddressLen*3 + consts.BoolLen + consts.Int64Len*3 + consts.Uint64Len

var recordSeed = []byte("delegation")

// Record tracks an active delegation at the base venue.
type Record struct {
	Owner           codec.Address  `json:"owner"`
	Account         codec.Address  `json:"account"`
	CommitFrequency time.Duration  `json:"commitFrequency"`
	Validator       *codec.Address `json:"validator,omitempty"`
	DelegatedAt     int64          `json:"delegatedAt"`
	LastCommit      int64          `json:"lastCommit"`
	Commits         uint64         `json:"commits"`
}

func (r *Record) Marshal(p *codec.Packer) {
	p.PackAddress(r.Owner)
	p.PackAddress(r.Account)
	p.PackInt64(int64(r.CommitFrequency))
	p.PackBool(r.Validator != nil)
	if r.Validator != nil {
		p.PackAddress(*r.Validator)
	} else {
		p.PackAddress(codec.EmptyAddress)
	}
	p.PackInt64(r.DelegatedAt)
	p.PackInt64(r.LastCommit)
	p.PackUint64(r.Commits)
}

func UnmarshalRecord(b []byte) (*Record, error) {
	p := codec.NewReader(b, RecordSpace)
	var r Record
	p.UnpackAddress(true, &r.Owner)
	p.UnpackAddress(true, &r.Account)
	r.CommitFrequency = time.Duration(p.UnpackInt64(true))
	hasValidator := p.UnpackBool()
	var validator codec.Address
	p.UnpackAddress(false, &validator)
	if hasValidator {
		r.Validator = &validator
	}
	r.DelegatedAt = p.UnpackInt64(false)
	r.LastCommit = p.UnpackInt64(false)
	r.Commits = p.UnpackUint64(false)
	return &r, p.Err()
}

// RecordAddress is where the record for [account] lives, owned by
// [program].
func RecordAddress(program codec.Address, account codec.Address) codec.Address {
	return storage.DeriveAddress(program, recordSeed, account[:])
}

func getRecord(ctx context.Context, im state.Immutable, program codec.Address, account codec.Address) (*Record, error) {
	a, err := storage.GetAccount(ctx, im, RecordAddress(program, account))
	if err != nil {
		return nil, err
	}
	return UnmarshalRecord(a.Data)
}

func putRecord(ctx context.Context, mu state.Mutable, program codec.Address, r *Record) error {
	p := codec.NewWriter(RecordSpace, RecordSpace)
	r.Marshal(p)
	if err := p.Err(); err != nil {
		return err
	}
	return storage.WriteAccountData(ctx, mu, RecordAddress(program, r.Account), program, p.Bytes())
}
