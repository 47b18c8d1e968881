// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/fxregistry/heap"
)

// timeModulus is used to modulo all the timestamps passed to emap to avoid an
// explosion of buckets (we only need second-level precision).
const timeModulus = 1000 // ms -> s

func reducePrecision(t int64) int64 {
	return t - t%timeModulus
}

type bucket struct {
	items []ids.ID
}

// EMap tracks ids until their expiry passes. It is used to reject replayed
// transactions while they are still valid.
type EMap struct {
	mu sync.RWMutex

	bh    *heap.Heap[*bucket, int64]
	seen  set.Set[ids.ID]
	times map[int64]*bucket
}

func NewEMap() *EMap {
	return &EMap{
		seen:  set.Set[ids.ID]{},
		times: make(map[int64]*bucket),
		bh:    heap.New[*bucket, int64](120, true),
	}
}

// Add records [id] until [expiry] (unix milliseconds). It returns false if
// [id] is already tracked.
func (e *EMap) Add(id ids.ID, expiry int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seen.Contains(id) {
		return false
	}
	e.seen.Add(id)

	t := reducePrecision(expiry)
	if b, ok := e.times[t]; ok {
		b.items = append(b.items, id)
		return true
	}
	b := &bucket{items: []ids.ID{id}}
	e.times[t] = b
	e.bh.Push(&heap.Entry[*bucket, int64]{
		ID:   id,
		Item: b,
		Val:  t,
	})
	return true
}

// SetMin evicts every id whose expiry bucket is older than [t].
func (e *EMap) SetMin(t int64) []ids.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	t = reducePrecision(t)
	evicted := []ids.ID{}
	for {
		first := e.bh.First()
		if first == nil || first.Val >= t {
			break
		}
		e.bh.Pop()
		for _, id := range first.Item.items {
			e.seen.Remove(id)
			evicted = append(evicted, id)
		}
		delete(e.times, first.Val)
	}
	return evicted
}

func (e *EMap) Contains(id ids.ID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.seen.Contains(id)
}

func (e *EMap) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.seen.Len()
}
