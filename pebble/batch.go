// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
)

var _ database.Batch = (*batch)(nil)

type op struct {
	key    []byte
	value  []byte
	delete bool
}

type batch struct {
	db   *Database
	b    *pebble.Batch
	ops  []op
	size int
}

func (b *batch) Put(key, value []byte) error {
	b.ops = append(b.ops, op{key: key, value: value})
	b.size += len(key) + len(value)
	return b.b.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: key, delete: true})
	b.size += len(key)
	return b.b.Delete(key, nil)
}

func (b *batch) Size() int {
	return b.size
}

func (b *batch) Write() error {
	start := time.Now()
	err := b.b.Commit(b.db.writeOpts)
	b.db.metrics.observeBatch(b.size, start, err)
	return err
}

func (b *batch) Reset() {
	b.b.Reset()
	b.ops = b.ops[:0]
	b.size = 0
}

func (b *batch) Replay(w database.KeyValueWriterDeleter) error {
	for _, o := range b.ops {
		if o.delete {
			if err := w.Delete(o.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(o.key, o.value); err != nil {
			return err
		}
	}
	return nil
}

func (b *batch) Inner() database.Batch {
	return b
}
