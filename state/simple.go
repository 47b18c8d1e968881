// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ava-labs/avalanchego/database"
	"golang.org/x/exp/maps"
)

var _ Mutable = (*SimpleMutable)(nil)

type change struct {
	value  []byte
	delete bool
}

// SimpleMutable buffers every write on top of [Immutable] state so that an
// operation either commits all of its changes or none of them. Access is
// restricted to the declared [Keys].
type SimpleMutable struct {
	v    Immutable
	keys Keys

	changes map[string]*change
}

func NewSimpleMutable(v Immutable, keys Keys) *SimpleMutable {
	return &SimpleMutable{
		v:       v,
		keys:    keys,
		changes: make(map[string]*change),
	}
}

func (s *SimpleMutable) check(key []byte, perm Permissions) error {
	if !s.keys[string(key)].Has(perm) {
		return fmt.Errorf("%w: %x", ErrInvalidKeyOrPermission, key)
	}
	return nil
}

func (s *SimpleMutable) GetValue(ctx context.Context, k []byte) ([]byte, error) {
	if err := s.check(k, Read); err != nil {
		return nil, err
	}
	return s.get(ctx, k)
}

func (s *SimpleMutable) get(ctx context.Context, k []byte) ([]byte, error) {
	if v, ok := s.changes[string(k)]; ok {
		if v.delete {
			return nil, database.ErrNotFound
		}
		return v.value, nil
	}
	return s.v.GetValue(ctx, k)
}

// Insert requires Write on existing keys and Allocate|Write on new ones.
func (s *SimpleMutable) Insert(ctx context.Context, k []byte, v []byte) error {
	_, err := s.get(ctx, k)
	switch {
	case err == nil:
		if err := s.check(k, Write); err != nil {
			return err
		}
	case errors.Is(err, database.ErrNotFound):
		if err := s.check(k, Allocate|Write); err != nil {
			return err
		}
	default:
		return err
	}
	s.changes[string(k)] = &change{value: slices.Clone(v)}
	return nil
}

func (s *SimpleMutable) Remove(_ context.Context, k []byte) error {
	if err := s.check(k, Write); err != nil {
		return err
	}
	s.changes[string(k)] = &change{delete: true}
	return nil
}

// Len returns the number of buffered changes.
func (s *SimpleMutable) Len() int {
	return len(s.changes)
}

// Commit replays the buffered changes, in key order, into [w].
func (s *SimpleMutable) Commit(w database.KeyValueWriterDeleter) error {
	keys := maps.Keys(s.changes)
	slices.Sort(keys)
	for _, k := range keys {
		c := s.changes[k]
		if c.delete {
			if err := w.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := w.Put([]byte(k), c.value); err != nil {
			return err
		}
	}
	return nil
}
