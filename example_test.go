// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"fmt"

	"code.hybscloud.com/ringq"
)

// ExampleNew demonstrates basic queue usage within one goroutine.
func ExampleNew() {
	// 8 slots, one reserved: holds up to 7 elements
	q := ringq.New[int](8)

	for i := 1; i <= 5; i++ {
		v := i * 10
		q.Enqueue(&v)
	}

	for range 5 {
		v, _ := q.Dequeue()
		fmt.Println(v)
	}

	// Output:
	// 10
	// 20
	// 30
	// 40
	// 50
}

// ExampleSPSC_Split demonstrates role separation: the producer handle
// can only enqueue, the consumer handle can only dequeue.
func ExampleSPSC_Split() {
	p, c := ringq.New[string](4).Split()

	for _, s := range []string{"a", "b", "c"} {
		p.Enqueue(&s)
	}

	for range 3 {
		s, _ := c.Dequeue()
		fmt.Println(s)
	}

	// Output:
	// a
	// b
	// c
}

// ExampleSPSC_EnqueueBatch demonstrates batch transfer with partial
// progress reporting.
func ExampleSPSC_EnqueueBatch() {
	q := ringq.New[int](4) // capacity 3

	written := q.EnqueueBatch([]int{1, 2, 3, 4, 5})
	fmt.Println("written:", written)

	buf := make([]int, 8)
	read := q.DequeueBatch(buf)
	fmt.Println("read:", buf[:read])

	// Output:
	// written: 3
	// read: [1 2 3]
}

// ExampleNewIndirect demonstrates the free-list pattern: the queue
// transports pool indices instead of payloads.
func ExampleNewIndirect() {
	pool := make([][]byte, 4)
	freeList := ringq.NewIndirect(8)

	for i := range pool {
		pool[i] = make([]byte, 4096)
		freeList.Enqueue(uintptr(i))
	}

	// Allocate a buffer by index, then return it
	idx, _ := freeList.Dequeue()
	buf := pool[idx]
	fmt.Println(len(buf))
	freeList.Enqueue(idx)

	// Output:
	// 4096
}
