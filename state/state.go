// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
)

type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

var _ Immutable = (*DatabaseView)(nil)

// DatabaseView exposes a database as read-only state.
type DatabaseView struct {
	db database.KeyValueReader
}

func NewDatabaseView(db database.KeyValueReader) *DatabaseView {
	return &DatabaseView{db: db}
}

func (d *DatabaseView) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return d.db.Get(key)
}
