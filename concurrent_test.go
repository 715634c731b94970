// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/ringq"
)

// Two-goroutine transfer tests. Skipped under the race detector: the
// detector cannot observe the happens-before edges established by the
// atomix acquire/release pairs and reports false positives on the
// slot accesses they protect.

// TestConcurrentFIFO pushes a counter sequence through a 1024-slot
// queue with one producer and one consumer goroutine; the consumer
// must observe every value exactly once, in order.
func TestConcurrentFIFO(t *testing.T) {
	if ringq.RaceEnabled {
		t.Skip("skip: acquire/release ordering is invisible to the race detector")
	}
	if testing.Short() {
		t.Skip("skip: long transfer test")
	}

	const total = 1000000
	p, c := ringq.New[int](1024).Split()

	var wg sync.WaitGroup
	deadline := time.Now().Add(30 * time.Second)

	wg.Add(1)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		for i := range total {
			v := i
			for p.Enqueue(&v) != nil {
				if time.Now().After(deadline) {
					return
				}
				backoff.Wait()
			}
			backoff.Reset()
		}
	}()

	backoff := iox.Backoff{}
	for want := 0; want < total; {
		got, err := c.Dequeue()
		if err != nil {
			if time.Now().After(deadline) {
				t.Fatalf("timeout: consumed %d of %d", want, total)
			}
			backoff.Wait()
			continue
		}
		backoff.Reset()
		if got != want {
			t.Fatalf("out of order: got %d, want %d", got, want)
		}
		want++
	}

	wg.Wait()
	if !c.Empty() {
		t.Fatalf("queue not empty after transfer: Len=%d", c.Len())
	}
}

// TestConcurrentBatch streams 1M values through a 4096-slot queue in
// 64-wide batches on both sides; order and exactly-once delivery must
// survive the wrap-spanning copies.
func TestConcurrentBatch(t *testing.T) {
	if ringq.RaceEnabled {
		t.Skip("skip: acquire/release ordering is invisible to the race detector")
	}
	if testing.Short() {
		t.Skip("skip: long transfer test")
	}

	const (
		total = 1000000
		chunk = 64
	)
	p, c := ringq.New[uint64](4096).Split()

	var wg sync.WaitGroup
	deadline := time.Now().Add(30 * time.Second)

	wg.Add(1)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		buf := make([]uint64, chunk)
		var next uint64
		for next < total {
			k := uint64(chunk)
			if next+k > total {
				k = total - next
			}
			for i := range k {
				buf[i] = next + i
			}
			sent := 0
			for sent < int(k) {
				n := p.EnqueueBatch(buf[sent:k])
				if n == 0 {
					if time.Now().After(deadline) {
						return
					}
					backoff.Wait()
					continue
				}
				backoff.Reset()
				sent += n
			}
			next += k
		}
	}()

	backoff := iox.Backoff{}
	buf := make([]uint64, chunk)
	var want uint64
	for want < total {
		n := c.DequeueBatch(buf)
		if n == 0 {
			if time.Now().After(deadline) {
				t.Fatalf("timeout: consumed %d of %d", want, total)
			}
			backoff.Wait()
			continue
		}
		backoff.Reset()
		for i := range n {
			if buf[i] != want {
				t.Fatalf("out of order: got %d, want %d", buf[i], want)
			}
			want++
		}
	}

	wg.Wait()
	if !c.Empty() {
		t.Fatalf("queue not empty after transfer: Len=%d", c.Len())
	}
}

// TestConcurrentIndirect runs the counter-sequence transfer over the
// uintptr flavor.
func TestConcurrentIndirect(t *testing.T) {
	if ringq.RaceEnabled {
		t.Skip("skip: acquire/release ordering is invisible to the race detector")
	}

	const total = 200000
	q := ringq.NewIndirect(512)

	var wg sync.WaitGroup
	deadline := time.Now().Add(30 * time.Second)

	wg.Add(1)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		for i := range total {
			for q.Enqueue(uintptr(i)) != nil {
				if time.Now().After(deadline) {
					return
				}
				backoff.Wait()
			}
			backoff.Reset()
		}
	}()

	backoff := iox.Backoff{}
	for want := 0; want < total; {
		got, err := q.Dequeue()
		if err != nil {
			if time.Now().After(deadline) {
				t.Fatalf("timeout: consumed %d of %d", want, total)
			}
			backoff.Wait()
			continue
		}
		backoff.Reset()
		if got != uintptr(want) {
			t.Fatalf("out of order: got %d, want %d", got, want)
		}
		want++
	}
	wg.Wait()
}
