// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package cache

import "time"

// recencyEntry records when a cache key was last written or read.
type recencyEntry struct {
	key      string
	storedAt time.Time
	index    int // position in the heap slice, maintained for O(log n) updates
}

// recencyHeap is a min-heap of cache keys ordered by storedAt, with a
// parallel map for O(1) key lookup. It is the eviction index for one
// namespace: the oldest keys surface at the root so capacity eviction can
// pop them without scanning every entry.
//
// Not thread-safe. Callers must hold the owning namespace lock.
type recencyHeap struct {
	entries []*recencyEntry
	byKey   map[string]*recencyEntry
}

func newRecencyHeap() *recencyHeap {
	return &recencyHeap{
		entries: make([]*recencyEntry, 0),
		byKey:   make(map[string]*recencyEntry),
	}
}

// touch records key as stored or read at the given time, inserting it if
// absent and reordering it if present.
func (h *recencyHeap) touch(key string, at time.Time) {
	if existing, ok := h.byKey[key]; ok {
		existing.storedAt = at
		h.fix(existing.index)
		return
	}

	entry := &recencyEntry{
		key:      key,
		storedAt: at,
		index:    len(h.entries),
	}
	h.entries = append(h.entries, entry)
	h.byKey[key] = entry
	h.bubbleUp(entry.index)
}

// remove drops key from the index. No-op if the key is absent.
func (h *recencyHeap) remove(key string) {
	entry, ok := h.byKey[key]
	if !ok {
		return
	}
	h.removeAt(entry.index)
}

// popOldest removes and returns the key with the earliest storedAt.
// Returns false if the heap is empty.
func (h *recencyHeap) popOldest() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.removeAt(0).key, true
}

func (h *recencyHeap) len() int {
	return len(h.entries)
}

// removeAt removes and returns the element at index i.
func (h *recencyHeap) removeAt(i int) *recencyEntry {
	n := len(h.entries) - 1
	entry := h.entries[i]

	delete(h.byKey, entry.key)

	if i == n {
		// Removing the last element
		h.entries = h.entries[:n]
		return entry
	}

	// Move the last element into position i and restore the heap property
	h.entries[i] = h.entries[n]
	h.entries[i].index = i
	h.entries = h.entries[:n]
	h.fix(i)

	return entry
}

// fix restores the heap property after the timestamp at index i changed.
func (h *recencyHeap) fix(i int) {
	// Try bubbling up first; if the element did not move, bubble down
	if h.bubbleUp(i) {
		return
	}
	h.bubbleDown(i)
}

// bubbleUp moves the element at index i up to its correct position.
// Returns true if the element moved.
func (h *recencyHeap) bubbleUp(i int) bool {
	moved := false
	for i > 0 {
		parent := (i - 1) / 2
		if !h.entries[i].storedAt.Before(h.entries[parent].storedAt) {
			break
		}
		h.swap(i, parent)
		i = parent
		moved = true
	}
	return moved
}

// bubbleDown moves the element at index i down to its correct position.
func (h *recencyHeap) bubbleDown(i int) {
	n := len(h.entries)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && h.entries[left].storedAt.Before(h.entries[smallest].storedAt) {
			smallest = left
		}
		if right < n && h.entries[right].storedAt.Before(h.entries[smallest].storedAt) {
			smallest = right
		}

		if smallest == i {
			break
		}

		h.swap(i, smallest)
		i = smallest
	}
}

// swap swaps elements at indices i and j.
func (h *recencyHeap) swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].index = i
	h.entries[j].index = j
}
