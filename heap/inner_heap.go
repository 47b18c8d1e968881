// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package heap

import (
	"cmp"
	"container/heap"

	"github.com/ava-labs/avalanchego/ids"
)

var _ heap.Interface = (*innerHeap[any, int])(nil)

// innerHeap implements heap.Interface. It is only used through Heap so the
// container/heap calls and the lookup map cannot drift apart.
type innerHeap[I any, V cmp.Ordered] struct {
	isMinHeap bool

	items  []*Entry[I, V]
	lookup map[ids.ID]*Entry[I, V]
}

func newInnerHeap[I any, V cmp.Ordered](items int, isMinHeap bool) *innerHeap[I, V] {
	return &innerHeap[I, V]{
		isMinHeap: isMinHeap,
		items:     make([]*Entry[I, V], 0, items),
		lookup:    make(map[ids.ID]*Entry[I, V], items),
	}
}

func (h *innerHeap[I, V]) Len() int { return len(h.items) }

func (h *innerHeap[I, V]) Less(i, j int) bool {
	if h.isMinHeap {
		return h.items[i].Val < h.items[j].Val
	}
	return h.items[i].Val > h.items[j].Val
}

func (h *innerHeap[I, V]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].Index = i
	h.items[j].Index = j
}

func (h *innerHeap[I, V]) Push(x any) {
	e := x.(*Entry[I, V])
	e.Index = len(h.items)
	h.items = append(h.items, e)
	h.lookup[e.ID] = e
}

func (h *innerHeap[I, V]) Pop() any {
	n := len(h.items)
	e := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	delete(h.lookup, e.ID)
	return e
}
