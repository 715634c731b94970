// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

// Options configures queue creation.
type Options struct {
	// Slot count (power of two >= 2); usable capacity is one less.
	capacity int
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	q := ringq.Build[Event](ringq.NewBuilder(1024))
//	freeList := ringq.NewBuilder(1024).BuildIndirect()
//	p, c := ringq.BuildSplit[Event](ringq.NewBuilder(4096))
type Builder struct {
	opts Options
}

// NewBuilder creates a queue builder with the given slot count.
// capacity must be a power of two >= 2; anything else panics.
func NewBuilder(capacity int) *Builder {
	if !validCapacity(capacity) {
		panic("ringq: capacity must be a power of two >= 2")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// Build creates a generic SPSC queue.
func Build[T any](b *Builder) *SPSC[T] {
	return New[T](b.opts.capacity)
}

// BuildSplit creates a generic SPSC queue and splits it into its
// producer and consumer endpoints in one step.
func BuildSplit[T any](b *Builder) (*Producer[T], *Consumer[T]) {
	return New[T](b.opts.capacity).Split()
}

// BuildIndirect creates an SPSC queue for uintptr values.
func (b *Builder) BuildIndirect() *SPSCIndirect {
	return NewIndirect(b.opts.capacity)
}

// BuildPtr creates an SPSC queue for unsafe.Pointer values.
func (b *Builder) BuildPtr() *SPSCPtr {
	return NewPtr(b.opts.capacity)
}
