// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringq provides a wait-free single-producer single-consumer
// bounded FIFO queue.
//
// The queue is a fixed-capacity ring buffer that hands values from
// exactly one producer goroutine (or process, see ringq/shm) to
// exactly one consumer with no locks, no kernel calls and bounded
// memory. Every operation completes in a bounded number of steps
// regardless of what the other side is doing.
//
// # Quick Start
//
//	q := ringq.New[Event](1024)
//
//	// Producer side
//	ev := Event{...}
//	if err := q.Enqueue(&ev); err != nil {
//	    // Queue full - handle backpressure
//	}
//
//	// Consumer side
//	ev, err := q.Dequeue()
//	if err == nil {
//	    process(ev)
//	}
//
// # Capacity
//
// The slot count must be a power of two >= 2 so that index reduction
// is a single mask; anything else panics at construction. One slot is
// reserved to distinguish full from empty without an auxiliary flag,
// so a queue with n slots holds at most n-1 elements:
//
//	q := ringq.New[int](4)  // Cap() == 3
//	q := ringq.New[int](2)  // Cap() == 1, the smallest legal queue
//	q := ringq.New[int](3)  // panics
//
// # Endpoints
//
// The SPSC protocol is only correct with one enqueueing and one
// dequeueing goroutine. Split converts that contract into role
// handles so each side of a pipeline only sees the half of the API
// it is allowed to call:
//
//	p, c := q.Split() // callable once; a second Split panics
//
//	go func() { // Producer stage
//	    backoff := iox.Backoff{}
//	    for v := range input {
//	        for p.Enqueue(&v) != nil {
//	            backoff.Wait()
//	        }
//	        backoff.Reset()
//	    }
//	}()
//
//	go func() { // Consumer stage
//	    backoff := iox.Backoff{}
//	    for {
//	        v, err := c.Dequeue()
//	        if err != nil {
//	            backoff.Wait()
//	            continue
//	        }
//	        backoff.Reset()
//	        process(v)
//	    }
//	}()
//
// Go cannot forbid copying a handle statically; using two goroutines
// on the same role is undefined behavior, exactly as it is for the
// unsplit queue.
//
// # Batch Transfer
//
// EnqueueBatch and DequeueBatch move a slice of elements in at most
// two contiguous copies (handling the index wrap) and publish the
// whole batch with a single release store. The cost of the
// producer-side release and the consumer-side acquire is amortized
// over the batch:
//
//	written := p.EnqueueBatch(values)   // 0..len(values)
//	read := c.DequeueBatch(buf)         // 0..len(buf)
//
// Partial progress is reported by the returned count; the unwritten
// tail of the source slice stays with the caller.
//
// # Memory Ordering
//
// The producer relaxed-loads its own tail, acquire-loads head to
// check space, writes the slot with a plain store, then
// release-stores the new tail. The consumer mirrors this with the
// roles of head and tail swapped. The release on tail pairs with the
// consumer's acquire: observing the new tail guarantees the slot
// write is visible. Head and tail live on separate cache lines
// (sized from the platform constant, see CacheLineSize), as do the
// producer's and consumer's cached views of the opposite index, so
// the two hot words never false-share.
//
// # Queue Flavors
//
//	New[T]       - generic queue for any element type
//	NewIndirect  - uintptr values (pool indices, handles)
//	NewPtr       - unsafe.Pointer values (zero-copy ownership transfer)
//
// # Error Handling
//
// Full and empty are the only runtime conditions and both surface as
// [ErrWouldBlock], sourced from [code.hybscloud.com/iox] for
// ecosystem consistency. There is no logging and no error chain;
// retry policy (spin, yield, park, shed load) belongs to the caller.
// Construction misuse - a bad capacity or a second Split - panics.
//
// # Teardown
//
// Close drops every resident element exactly once, in head-to-tail
// order, clearing the slots so the garbage collector can reclaim
// anything the payloads referenced. Close is not synchronized against
// concurrent operations; call it only after both sides are quiescent.
//
// # Cross-Process Use
//
// Package [code.hybscloud.com/ringq/shm] places the same queue in a
// file-backed shared mapping so the producer and consumer can live in
// different processes. Element types must be free of pointers.
//
// # Race Detection
//
// Go's race detector cannot observe the happens-before relationships
// established through atomix acquire-release orderings and reports
// false positives on the slot accesses they protect. Concurrent
// tests are excluded under the race detector via //go:build !race;
// see [RaceEnabled].
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [golang.org/x/sys/cpu] for the cache line
// size.
package ringq
