// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// SPSCPtr is an SPSC queue for unsafe.Pointer values.
// Useful for zero-copy pointer passing between goroutines: the
// producer transfers ownership of the pointed-to object and must not
// touch it after a successful Enqueue.
type SPSCPtr struct {
	_          pad
	head       atomix.Uint64
	_          pad
	cachedTail uint64
	_          pad
	tail       atomix.Uint64
	_          pad
	cachedHead uint64
	_          pad
	buffer     []unsafe.Pointer
	mask       uint64
	split      atomix.Uint64
}

// NewPtr creates a new SPSC queue for unsafe.Pointer values.
// capacity must be a power of two >= 2; usable capacity is capacity-1.
func NewPtr(capacity int) *SPSCPtr {
	if !validCapacity(capacity) {
		panic("ringq: capacity must be a power of two >= 2")
	}

	return &SPSCPtr{
		buffer: make([]unsafe.Pointer, capacity),
		mask:   uint64(capacity - 1),
	}
}

// Enqueue adds an element (producer only).
// Returns ErrWouldBlock if the queue is full.
func (q *SPSCPtr) Enqueue(elem unsafe.Pointer) error {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead >= q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead >= q.mask {
			return ErrWouldBlock
		}
	}

	// Pointer arithmetic avoids slice bounds checking in hot path.
	// Equivalent to q.buffer[tail&q.mask] = elem
	*(*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(q.buffer)), int(tail&q.mask)*ptrSize)) = elem
	q.tail.StoreRelease(tail + 1)
	return nil
}

// Dequeue removes and returns an element (consumer only).
// The slot is cleared so the queue does not pin the object.
// Returns (nil, ErrWouldBlock) if the queue is empty.
func (q *SPSCPtr) Dequeue() (unsafe.Pointer, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			return nil, ErrWouldBlock
		}
	}

	// Pointer arithmetic avoids slice bounds checking in hot path.
	// Equivalent to elem := q.buffer[head&q.mask]
	slot := (*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(q.buffer)), int(head&q.mask)*ptrSize))
	elem := *slot
	*slot = nil
	q.head.StoreRelease(head + 1)
	return elem, nil
}

// EnqueueBatch adds up to len(src) elements (producer only) with a
// single release store. Returns the number actually enqueued.
func (q *SPSCPtr) EnqueueBatch(src []unsafe.Pointer) int {
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

// DequeueBatch removes up to len(dst) elements (consumer only) with a
// single release store. Consumed slots are cleared. Returns the
// number actually dequeued.
func (q *SPSCPtr) DequeueBatch(dst []unsafe.Pointer) int {
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

// Cap returns the usable capacity.
func (q *SPSCPtr) Cap() int {
	return int(q.mask)
}

// Len returns a snapshot of the occupancy; see SPSC.Len.
func (q *SPSCPtr) Len() int {
	tail := q.tail.Load()
	head := q.head.Load()
	if head >= tail {
		return 0
	}
	return int(tail - head)
}

// Empty reports whether the queue was empty at the snapshot.
func (q *SPSCPtr) Empty() bool {
	return q.Len() == 0
}

// Full reports whether the queue was full at the snapshot.
func (q *SPSCPtr) Full() bool {
	return q.Len() == q.Cap()
}

// Close drops every resident pointer, clearing each occupied slot
// exactly once in head-to-tail order. Teardown only.
func (q *SPSCPtr) Close() {
	head := q.head.Load()
	tail := q.tail.LoadAcquire()
	for i := head; i != tail; i++ {
		q.buffer[i&q.mask] = nil
	}
	q.cachedTail = tail
	q.head.StoreRelease(tail)
}

// ProducerPtr is the enqueue-side handle of a split SPSCPtr.
type ProducerPtr struct {
	q *SPSCPtr
}

// ConsumerPtr is the dequeue-side handle of a split SPSCPtr.
type ConsumerPtr struct {
	q *SPSCPtr
}

// Split divides the queue into exactly one producer and one consumer
// handle. A second call panics.
func (q *SPSCPtr) Split() (*ProducerPtr, *ConsumerPtr) {
	if !q.split.CompareAndSwapAcqRel(0, 1) {
		panic("ringq: queue already split")
	}
	return &ProducerPtr{q: q}, &ConsumerPtr{q: q}
}

// Enqueue adds an element to the queue.
// Returns ErrWouldBlock if the queue is full.
func (p *ProducerPtr) Enqueue(elem unsafe.Pointer) error { return p.q.Enqueue(elem) }

// EnqueueBatch adds up to len(src) elements and returns the number
// actually enqueued.
func (p *ProducerPtr) EnqueueBatch(src []unsafe.Pointer) int { return p.q.EnqueueBatch(src) }

// Cap returns the usable capacity.
func (p *ProducerPtr) Cap() int { return p.q.Cap() }

// Len returns a snapshot of the occupancy.
func (p *ProducerPtr) Len() int { return p.q.Len() }

// Full reports whether the queue was full at the snapshot.
func (p *ProducerPtr) Full() bool { return p.q.Full() }

// Dequeue removes and returns an element.
// Returns (nil, ErrWouldBlock) if the queue is empty.
func (c *ConsumerPtr) Dequeue() (unsafe.Pointer, error) { return c.q.Dequeue() }

// DequeueBatch removes up to len(dst) elements and returns the number
// actually dequeued. Consumed slots are cleared.
func (c *ConsumerPtr) DequeueBatch(dst []unsafe.Pointer) int { return c.q.DequeueBatch(dst) }

// Cap returns the usable capacity.
func (c *ConsumerPtr) Cap() int { return c.q.Cap() }

// Len returns a snapshot of the occupancy.
func (c *ConsumerPtr) Len() int { return c.q.Len() }

// Empty reports whether the queue was empty at the snapshot.
func (c *ConsumerPtr) Empty() bool { return c.q.Empty() }

// Close drops every resident pointer. Teardown only; see SPSCPtr.Close.
func (c *ConsumerPtr) Close() { c.q.Close() }
