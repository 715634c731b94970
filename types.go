// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import "unsafe"

// Enqueuer is the interface for the producer role of a queue.
//
// The element is passed by pointer to avoid copying large structs.
// The queue stores a copy of the pointed-to value, so the original
// can be modified after Enqueue returns. Both *SPSC[T] and
// *Producer[T] satisfy Enqueuer.
type Enqueuer[T any] interface {
	// Enqueue adds an element to the queue (non-blocking).
	// Returns nil on success, ErrWouldBlock if the queue is full.
	Enqueue(elem *T) error

	// EnqueueBatch adds up to len(src) elements and returns the
	// number actually enqueued, publishing them with one release
	// store.
	EnqueueBatch(src []T) int
}

// Dequeuer is the interface for the consumer role of a queue.
//
// Elements are returned by value; the vacated slot is cleared so the
// garbage collector can reclaim referenced objects. Both *SPSC[T]
// and *Consumer[T] satisfy Dequeuer.
type Dequeuer[T any] interface {
	// Dequeue removes and returns an element (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)

	// DequeueBatch removes up to len(dst) elements and returns the
	// number actually dequeued, freeing the slots with one release
	// store.
	DequeueBatch(dst []T) int
}

// Queue is the combined producer-consumer surface of an SPSC queue.
//
// Len, Empty and Full are snapshots: the values reflect one moment in
// time and may be stale immediately, but are never out of range.
type Queue[T any] interface {
	Enqueuer[T]
	Dequeuer[T]
	Cap() int
	Len() int
	Empty() bool
	Full() bool
}

// EnqueuerIndirect is the producer role for uintptr queues.
type EnqueuerIndirect interface {
	Enqueue(elem uintptr) error
	EnqueueBatch(src []uintptr) int
}

// DequeuerIndirect is the consumer role for uintptr queues.
type DequeuerIndirect interface {
	Dequeue() (uintptr, error)
	DequeueBatch(dst []uintptr) int
}

// QueueIndirect is the combined surface for uintptr queues.
// Indirect queues transport indices or handles instead of payloads:
// buffer pools, object pools, any index-based structure.
type QueueIndirect interface {
	EnqueuerIndirect
	DequeuerIndirect
	Cap() int
	Len() int
	Empty() bool
	Full() bool
}

// EnqueuerPtr is the producer role for unsafe.Pointer queues.
type EnqueuerPtr interface {
	Enqueue(elem unsafe.Pointer) error
	EnqueueBatch(src []unsafe.Pointer) int
}

// DequeuerPtr is the consumer role for unsafe.Pointer queues.
type DequeuerPtr interface {
	Dequeue() (unsafe.Pointer, error)
	DequeueBatch(dst []unsafe.Pointer) int
}

// QueuePtr is the combined surface for unsafe.Pointer queues.
// Ptr queues pass pointers without copying; the producer transfers
// ownership of the pointed-to object to the consumer.
type QueuePtr interface {
	EnqueuerPtr
	DequeuerPtr
	Cap() int
	Len() int
	Empty() bool
	Full() bool
}
