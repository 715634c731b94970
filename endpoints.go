// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// Endpoint handles split a queue into its two roles. The SPSC
// protocol is only correct with one enqueueing goroutine and one
// dequeueing goroutine; handing each side a role-specific handle
// turns an accidental second producer into an API misuse that is
// visible in the code, not a silent data race.
//
// A handle is a view of the queue, not an owner: the queue outlives
// both handles and Split never copies the buffer.

// Producer is the enqueue-side handle of a split SPSC queue.
// It must be used by at most one goroutine at a time.
type Producer[T any] struct {
	q *SPSC[T]
}

// Consumer is the dequeue-side handle of a split SPSC queue.
// It must be used by at most one goroutine at a time.
type Consumer[T any] struct {
	q *SPSC[T]
}

// Split divides the queue into exactly one Producer and one Consumer
// handle. Split may be called once per queue; a second call panics.
func (q *SPSC[T]) Split() (*Producer[T], *Consumer[T]) {
	if !q.split.CompareAndSwapAcqRel(0, 1) {
		panic("ringq: queue already split")
	}
	return &Producer[T]{q: q}, &Consumer[T]{q: q}
}

// Enqueue adds an element to the queue.
// Returns ErrWouldBlock if the queue is full.
func (p *Producer[T]) Enqueue(elem *T) error { return p.q.Enqueue(elem) }

// EnqueueBatch adds up to len(src) elements and returns the number
// actually enqueued.
func (p *Producer[T]) EnqueueBatch(src []T) int { return p.q.EnqueueBatch(src) }

// Cap returns the usable capacity.
func (p *Producer[T]) Cap() int { return p.q.Cap() }

// Len returns a snapshot of the occupancy.
func (p *Producer[T]) Len() int { return p.q.Len() }

// Full reports whether the queue was full at the snapshot.
func (p *Producer[T]) Full() bool { return p.q.Full() }

// Dequeue removes and returns an element.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (c *Consumer[T]) Dequeue() (T, error) { return c.q.Dequeue() }

// DequeueBatch removes up to len(dst) elements and returns the number
// actually dequeued.
func (c *Consumer[T]) DequeueBatch(dst []T) int { return c.q.DequeueBatch(dst) }

// Cap returns the usable capacity.
func (c *Consumer[T]) Cap() int { return c.q.Cap() }

// Len returns a snapshot of the occupancy.
func (c *Consumer[T]) Len() int { return c.q.Len() }

// Empty reports whether the queue was empty at the snapshot.
func (c *Consumer[T]) Empty() bool { return c.q.Empty() }

// Close drops every resident element. Teardown only; see SPSC.Close.
func (c *Consumer[T]) Close() { c.q.Close() }
