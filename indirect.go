// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// SPSCIndirect is an SPSC queue for uintptr values.
//
// Useful for buffer pools, object pools, or any index-based data
// structure where the queue transports handles instead of payloads.
// Same protocol and capacity rules as SPSC[T].
type SPSCIndirect struct {
	_          pad
	head       atomix.Uint64
	_          pad
	cachedTail uint64
	_          pad
	tail       atomix.Uint64
	_          pad
	cachedHead uint64
	_          pad
	buffer     []uintptr
	mask       uint64
	split      atomix.Uint64
}

// NewIndirect creates a new SPSC queue for uintptr values.
// capacity must be a power of two >= 2; usable capacity is capacity-1.
func NewIndirect(capacity int) *SPSCIndirect {
	if !validCapacity(capacity) {
		panic("ringq: capacity must be a power of two >= 2")
	}

	return &SPSCIndirect{
		buffer: make([]uintptr, capacity),
		mask:   uint64(capacity - 1),
	}
}

// Enqueue adds an element (producer only).
// Returns ErrWouldBlock if the queue is full.
func (q *SPSCIndirect) Enqueue(elem uintptr) error {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead >= q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead >= q.mask {
			return ErrWouldBlock
		}
	}

	// Bounds check eliminated: tail&mask is always < len(buffer)
	// because mask = len(buffer)-1 and x&mask <= mask
	*(*uintptr)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(q.buffer)), int(tail&q.mask)*ptrSize)) = elem
	q.tail.StoreRelease(tail + 1)
	return nil
}

// Dequeue removes and returns an element (consumer only).
// Returns (0, ErrWouldBlock) if the queue is empty.
func (q *SPSCIndirect) Dequeue() (uintptr, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			return 0, ErrWouldBlock
		}
	}

	// Bounds check eliminated: head&mask is always < len(buffer)
	elem := *(*uintptr)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(q.buffer)), int(head&q.mask)*ptrSize))
	q.head.StoreRelease(head + 1)
	return elem, nil
}

// EnqueueBatch adds up to len(src) elements (producer only), then
// publishes them with a single release store of tail. Returns the
// number actually enqueued.
func (q *SPSCIndirect) EnqueueBatch(src []uintptr) int {
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

// DequeueBatch removes up to len(dst) elements (consumer only), then
// frees the slots with a single release store of head. Returns the
// number actually dequeued.
func (q *SPSCIndirect) DequeueBatch(dst []uintptr) int {
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

	q.head.StoreRelease(head + n)
	return int(n)
}

// Cap returns the usable capacity.
func (q *SPSCIndirect) Cap() int {
	return int(q.mask)
}

// Len returns a snapshot of the occupancy; see SPSC.Len.
func (q *SPSCIndirect) Len() int {
	tail := q.tail.Load()
	head := q.head.Load()
	if head >= tail {
		return 0
	}
	return int(tail - head)
}

// Empty reports whether the queue was empty at the snapshot.
func (q *SPSCIndirect) Empty() bool {
	return q.Len() == 0
}

// Full reports whether the queue was full at the snapshot.
func (q *SPSCIndirect) Full() bool {
	return q.Len() == q.Cap()
}

// Close empties the queue. Teardown only. Values are plain words, so
// nothing needs clearing beyond advancing head past tail.
func (q *SPSCIndirect) Close() {
	tail := q.tail.LoadAcquire()
	q.cachedTail = tail
	q.head.StoreRelease(tail)
}

// ProducerIndirect is the enqueue-side handle of a split SPSCIndirect.
type ProducerIndirect struct {
	q *SPSCIndirect
}

// ConsumerIndirect is the dequeue-side handle of a split SPSCIndirect.
type ConsumerIndirect struct {
	q *SPSCIndirect
}

// Split divides the queue into exactly one producer and one consumer
// handle. A second call panics.
func (q *SPSCIndirect) Split() (*ProducerIndirect, *ConsumerIndirect) {
	if !q.split.CompareAndSwapAcqRel(0, 1) {
		panic("ringq: queue already split")
	}
	return &ProducerIndirect{q: q}, &ConsumerIndirect{q: q}
}

// Enqueue adds an element to the queue.
// Returns ErrWouldBlock if the queue is full.
func (p *ProducerIndirect) Enqueue(elem uintptr) error { return p.q.Enqueue(elem) }

// EnqueueBatch adds up to len(src) elements and returns the number
// actually enqueued.
func (p *ProducerIndirect) EnqueueBatch(src []uintptr) int { return p.q.EnqueueBatch(src) }

// Cap returns the usable capacity.
func (p *ProducerIndirect) Cap() int { return p.q.Cap() }

// Len returns a snapshot of the occupancy.
func (p *ProducerIndirect) Len() int { return p.q.Len() }

// Full reports whether the queue was full at the snapshot.
func (p *ProducerIndirect) Full() bool { return p.q.Full() }

// Dequeue removes and returns an element.
// Returns (0, ErrWouldBlock) if the queue is empty.
func (c *ConsumerIndirect) Dequeue() (uintptr, error) { return c.q.Dequeue() }

// DequeueBatch removes up to len(dst) elements and returns the number
// actually dequeued.
func (c *ConsumerIndirect) DequeueBatch(dst []uintptr) int { return c.q.DequeueBatch(dst) }

// Cap returns the usable capacity.
func (c *ConsumerIndirect) Cap() int { return c.q.Cap() }

// Len returns a snapshot of the occupancy.
func (c *ConsumerIndirect) Len() int { return c.q.Len() }

// Empty reports whether the queue was empty at the snapshot.
func (c *ConsumerIndirect) Empty() bool { return c.q.Empty() }

// Close empties the queue. Teardown only; see SPSCIndirect.Close.
func (c *ConsumerIndirect) Close() { c.q.Close() }
