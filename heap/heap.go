// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package heap

import (
	"cmp"
	"container/heap"

	"github.com/ava-labs/avalanchego/ids"
)

// Entry is an item tracked by a Heap, ordered by [Val] and looked up by [ID].
type Entry[I any, V cmp.Ordered] struct {
	ID   ids.ID
	Item I
	Val  V

	// Index is maintained by the heap.
	Index int
}

// Heap tracks items of type [I] ordered by a value of type [V].
//
// Heap is not safe for concurrent use.
type Heap[I any, V cmp.Ordered] struct {
	ih *innerHeap[I, V]
}

// New returns an empty heap with room for [items] entries. The smallest value
// comes first when [isMinHeap] is set, the largest otherwise.
func New[I any, V cmp.Ordered](items int, isMinHeap bool) *Heap[I, V] {
	return &Heap[I, V]{newInnerHeap[I, V](items, isMinHeap)}
}

func (h *Heap[I, V]) Len() int { return h.ih.Len() }

// Get returns the entry stored under [id].
func (h *Heap[I, V]) Get(id ids.ID) (*Entry[I, V], bool) {
	e, ok := h.ih.lookup[id]
	return e, ok
}

func (h *Heap[I, V]) Has(id ids.ID) bool {
	_, ok := h.ih.lookup[id]
	return ok
}

// Items returns the entries in heap order. Callers must not modify it.
func (h *Heap[I, V]) Items() []*Entry[I, V] {
	return h.ih.items
}

// Push adds [e]. Entries with an ID already in the heap are ignored.
func (h *Heap[I, V]) Push(e *Entry[I, V]) {
	if h.Has(e.ID) {
		return
	}
	heap.Push(h.ih, e)
}

// Pop removes and returns the first entry, or nil if the heap is empty.
func (h *Heap[I, V]) Pop() *Entry[I, V] {
	if len(h.ih.items) == 0 {
		return nil
	}
	return heap.Pop(h.ih).(*Entry[I, V])
}

// Remove removes the entry at [index], or returns nil if there is none.
func (h *Heap[I, V]) Remove(index int) *Entry[I, V] {
	if index < 0 || index >= len(h.ih.items) {
		return nil
	}
	return heap.Remove(h.ih, index).(*Entry[I, V])
}

// First returns the smallest entry of a min heap or the largest entry of a
// max heap without removing it. It returns nil if the heap is empty.
func (h *Heap[I, V]) First() *Entry[I, V] {
	if len(h.ih.items) == 0 {
		return nil
	}
	return h.ih.items[0]
}
