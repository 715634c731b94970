// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"testing"
	"unsafe"

	"github.com/valyala/fastrand"

	"code.hybscloud.com/ringq"
)

// TestBatchParity checks that a batch enqueue followed by a batch
// dequeue reproduces the source slice element for element.
func TestBatchParity(t *testing.T) {
	q := ringq.New[int](16)

	src := make([]int, 10)
	for i := range src {
		src[i] = i * 11
	}
	if n := q.EnqueueBatch(src); n != len(src) {
		t.Fatalf("EnqueueBatch: got %d, want %d", n, len(src))
	}
	if q.Len() != len(src) {
		t.Fatalf("Len after batch: got %d, want %d", q.Len(), len(src))
	}

	dst := make([]int, 16)
	n := q.DequeueBatch(dst)
	if n != len(src) {
		t.Fatalf("DequeueBatch: got %d, want %d", n, len(src))
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("dst[%d]: got %d, want %d", i, dst[i], src[i])
		}
	}
}

// TestBatchPartial checks count semantics at the boundaries: a batch
// larger than the free space writes only what fits, a full queue
// admits nothing, an empty queue yields nothing.
func TestBatchPartial(t *testing.T) {
	q := ringq.New[int](8) // capacity 7

	src := make([]int, 10)
	for i := range src {
		src[i] = i
	}
	if n := q.EnqueueBatch(src); n != 7 {
		t.Fatalf("EnqueueBatch over capacity: got %d, want 7", n)
	}
	if n := q.EnqueueBatch(src); n != 0 {
		t.Fatalf("EnqueueBatch on full: got %d, want 0", n)
	}

	dst := make([]int, 3)
	if n := q.DequeueBatch(dst); n != 3 {
		t.Fatalf("DequeueBatch: got %d, want 3", n)
	}
	for i := range dst {
		if dst[i] != i {
			t.Fatalf("dst[%d]: got %d, want %d", i, dst[i], i)
		}
	}

	rest := make([]int, 8)
	if n := q.DequeueBatch(rest); n != 4 {
		t.Fatalf("DequeueBatch remainder: got %d, want 4", n)
	}
	if n := q.DequeueBatch(rest); n != 0 {
		t.Fatalf("DequeueBatch on empty: got %d, want 0", n)
	}

	if n := q.EnqueueBatch(nil); n != 0 {
		t.Fatalf("EnqueueBatch(nil): got %d, want 0", n)
	}
	if n := q.DequeueBatch(nil); n != 0 {
		t.Fatalf("DequeueBatch(nil): got %d, want 0", n)
	}
}

// TestBatchWrap drives the indices to just before the physical end of
// the buffer so a single batch spans the wrap, then verifies order.
func TestBatchWrap(t *testing.T) {
	q := ringq.New[int](8)

	// Advance head and tail to slot 6 of 8
	warm := []int{0, 0, 0, 0, 0, 0}
	if n := q.EnqueueBatch(warm); n != 6 {
		t.Fatalf("warm EnqueueBatch: got %d, want 6", n)
	}
	if n := q.DequeueBatch(make([]int, 6)); n != 6 {
		t.Fatalf("warm DequeueBatch: got %d, want 6", n)
	}

	// This batch writes slots 6, 7, 0, 1, 2
	src := []int{10, 20, 30, 40, 50}
	if n := q.EnqueueBatch(src); n != 5 {
		t.Fatalf("wrapping EnqueueBatch: got %d, want 5", n)
	}
	dst := make([]int, 5)
	if n := q.DequeueBatch(dst); n != 5 {
		t.Fatalf("wrapping DequeueBatch: got %d, want 5", n)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("dst[%d]: got %d, want %d", i, dst[i], src[i])
		}
	}
}

// TestBatchRandomSizes streams a counter sequence through the queue
// in randomly sized chunks on both sides and verifies that nothing is
// lost, duplicated or reordered.
func TestBatchRandomSizes(t *testing.T) {
	q := ringq.New[uint32](64)

	const total = 100000
	var rng fastrand.RNG
	rng.Seed(42)

	var produced, consumed uint32
	buf := make([]uint32, 32)
	for consumed < total {
		if produced < total {
			k := rng.Uint32n(32) + 1
			if produced+k > total {
				k = total - produced
			}
			chunk := buf[:k]
			for i := range chunk {
				chunk[i] = produced + uint32(i)
			}
			produced += uint32(q.EnqueueBatch(chunk))
		}

		k := rng.Uint32n(32) + 1
		dst := make([]uint32, k)
		n := q.DequeueBatch(dst)
		for i := range n {
			if dst[i] != consumed {
				t.Fatalf("out of order: got %d, want %d", dst[i], consumed)
			}
			consumed++
		}
	}

	if !q.Empty() {
		t.Fatalf("queue not drained: Len=%d", q.Len())
	}
}

// TestBatchIndirect covers batch transfer for the uintptr flavor,
// including the wrap.
func TestBatchIndirect(t *testing.T) {
	q := ringq.NewIndirect(8)

	if n := q.EnqueueBatch(make([]uintptr, 6)); n != 6 {
		t.Fatalf("warm EnqueueBatch: got %d, want 6", n)
	}
	if n := q.DequeueBatch(make([]uintptr, 6)); n != 6 {
		t.Fatalf("warm DequeueBatch: got %d, want 6", n)
	}

	src := []uintptr{1, 2, 3, 4, 5}
	if n := q.EnqueueBatch(src); n != 5 {
		t.Fatalf("EnqueueBatch: got %d, want 5", n)
	}
	dst := make([]uintptr, 8)
	if n := q.DequeueBatch(dst); n != 5 {
		t.Fatalf("DequeueBatch: got %d, want 5", n)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("dst[%d]: got %d, want %d", i, dst[i], src[i])
		}
	}
}

// TestBatchPtr covers batch transfer for the unsafe.Pointer flavor.
func TestBatchPtr(t *testing.T) {
	q := ringq.NewPtr(8)

	vals := []int{10, 20, 30}
	src := make([]unsafe.Pointer, len(vals))
	for i := range vals {
		src[i] = unsafe.Pointer(&vals[i])
	}
	if n := q.EnqueueBatch(src); n != 3 {
		t.Fatalf("EnqueueBatch: got %d, want 3", n)
	}
	dst := make([]unsafe.Pointer, 8)
	if n := q.DequeueBatch(dst); n != 3 {
		t.Fatalf("DequeueBatch: got %d, want 3", n)
	}
	for i := range vals {
		if got := *(*int)(dst[i]); got != vals[i] {
			t.Fatalf("dst[%d]: got %d, want %d", i, got, vals[i])
		}
	}
}
