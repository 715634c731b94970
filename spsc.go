// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"code.hybscloud.com/atomix"
)

// SPSC is a single-producer single-consumer bounded FIFO queue.
//
// Based on Lamport's ring buffer with cached index optimization.
// The producer caches the consumer's dequeue index, and vice versa,
// reducing cross-core cache line traffic.
//
// Indices are monotonically increasing uint64 counters, reduced to a
// slot index only when touching the buffer (idx & mask). One slot is
// reserved so an occupancy check never confuses full with empty:
// a queue with n slots holds at most n-1 elements.
//
// Memory: O(n) with no per-slot overhead
type SPSC[T any] struct {
	_          pad
	head       atomix.Uint64 // Consumer reads from here
	_          pad
	cachedTail uint64 // Consumer's cached view of tail
	_          pad
	tail       atomix.Uint64 // Producer writes here
	_          pad
	cachedHead uint64 // Producer's cached view of head
	_          pad
	buffer     []T
	mask       uint64
	split      atomix.Uint64 // Split-once guard
}

// New creates a new SPSC queue with the given slot count.
//
// capacity must be a power of two >= 2; anything else panics. The
// usable capacity is capacity-1 (one slot stays reserved to tell
// full from empty without an auxiliary flag).
func New[T any](capacity int) *SPSC[T] {
	if !validCapacity(capacity) {
		panic("ringq: capacity must be a power of two >= 2")
	}

	return &SPSC[T]{
		buffer: make([]T, capacity),
		mask:   uint64(capacity - 1),
	}
}

// Enqueue adds an element to the queue (producer only).
// The element is copied into the queue's internal buffer; the
// caller's value is never modified, so a failed Enqueue loses nothing.
// Returns ErrWouldBlock if the queue is full.
func (q *SPSC[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead >= q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead >= q.mask {
			return ErrWouldBlock
		}
	}

	q.buffer[tail&q.mask] = *elem
	q.tail.StoreRelease(tail + 1)
	return nil
}

// Dequeue removes and returns an element (consumer only).
// The consumed slot is cleared so the GC can reclaim anything the
// payload referenced.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *SPSC[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			var zero T
			return zero, ErrWouldBlock
		}
	}

	elem := q.buffer[head&q.mask]
	var zero T
	q.buffer[head&q.mask] = zero
	q.head.StoreRelease(head + 1)
	return elem, nil
}

// EnqueueBatch adds up to len(src) elements (producer only) and
// returns the number actually enqueued, 0..len(src). Elements are
// copied in at most two contiguous segments (the wrap), then a single
// release store of tail publishes the whole batch. The unwritten tail
// of src stays with the caller.
func (q *SPSC[T]) EnqueueBatch(src []T) int {
	if len(src) == 0 {
		return 0
	}

	tail := q.tail.LoadRelaxed()
	free := q.mask - (tail - q.cachedHead)
	if uint64(len(src)) > free {
		q.cachedHead = q.head.LoadAcquire()
		free = q.mask - (tail - q.cachedHead)
	}
	n := uint64(len(src))
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	idx := tail & q.mask
	first := uint64(len(q.buffer)) - idx
	if first > n {
		first = n
	}
	copy(q.buffer[idx:idx+first], src[:first])
	copy(q.buffer[:n-first], src[first:n])

	q.tail.StoreRelease(tail + n)
	return int(n)
}

// DequeueBatch removes up to len(dst) elements (consumer only) and
// returns the number actually dequeued, 0..len(dst). Mirrors
// EnqueueBatch: at most two contiguous copies, one release store of
// head. Consumed slots are cleared.
func (q *SPSC[T]) DequeueBatch(dst []T) int {
	if len(dst) == 0 {
		return 0
	}

	head := q.head.LoadRelaxed()
	avail := q.cachedTail - head
	if uint64(len(dst)) > avail {
		q.cachedTail = q.tail.LoadAcquire()
		avail = q.cachedTail - head
	}
	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	idx := head & q.mask
	first := uint64(len(q.buffer)) - idx
	if first > n {
		first = n
	}
	copy(dst[:first], q.buffer[idx:idx+first])
	copy(dst[first:n], q.buffer[:n-first])
	clear(q.buffer[idx : idx+first])
	clear(q.buffer[:n-first])

	q.head.StoreRelease(head + n)
	return int(n)
}

// Cap returns the usable capacity: one less than the slot count.
func (q *SPSC[T]) Cap() int {
	return int(q.mask)
}

// Len returns the current occupancy. The value is a snapshot: it
// reflects one moment in time and may be stale by the time the caller
// looks at it, but it is always within [0, Cap()].
func (q *SPSC[T]) Len() int {
	// Tail is sampled first. Head only grows, so tail-head can only
	// shrink (and underflow) between the two loads, never exceed the
	// occupancy at the tail sample.
	tail := q.tail.Load()
	head := q.head.Load()
	if head >= tail {
		return 0
	}
	return int(tail - head)
}

// Empty reports whether the queue was empty at the snapshot.
func (q *SPSC[T]) Empty() bool {
	return q.Len() == 0
}

// Full reports whether the queue was full at the snapshot.
func (q *SPSC[T]) Full() bool {
	return q.Len() == q.Cap()
}

// Close drops every resident element, clearing each occupied slot
// exactly once in head-to-tail order, and leaves the queue empty.
//
// Close is a teardown operation: both sides must be quiescent. It is
// not safe against a concurrent Enqueue or Dequeue.
func (q *SPSC[T]) Close() {
	head := q.head.Load()
	tail := q.tail.LoadAcquire()
	for i := head; i != tail; i++ {
		var zero T
		q.buffer[i&q.mask] = zero
	}
	q.cachedTail = tail
	q.head.StoreRelease(tail)
}
