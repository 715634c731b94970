// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package shm places an SPSC queue in a file-backed shared mapping so
// the producer and the consumer can live in different processes.
//
// One process calls Create to build and initialize the region (use a
// tmpfs path such as /dev/shm to keep it off disk); the other calls
// Attach with the same path, capacity and element type. After both
// sides are up, operation is identical to the in-process queue:
// non-blocking Enqueue/Dequeue plus batch transfer, with ErrWouldBlock
// as the entire failure surface.
//
// Region layout, in mapping order:
//
//	offset 0              head word, padded to one cache line
//	offset CacheLineSize  tail word, padded to one cache line
//	offset 2*CacheLineSize slot array, capacity cells of sizeof(T)
//
// Both sides must agree on the architecture, cache line size,
// capacity and the representation of T. There is no magic number and
// no versioning; the design assumes trusted, matched endpoints.
// Attach verifies nothing beyond the region size.
//
// T must be trivially shareable across the process boundary: no
// pointers, maps, slices, strings, channels, functions or interfaces
// anywhere in its representation. Create and Attach reject element
// types that violate this.
//
// The mapping must outlive both endpoints. Close unmaps this
// process's view; unmapping while the other side still operates on
// the queue is undefined.
package shm

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"unsafe"

	"golang.org/x/sys/unix"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/ringq"
)

// headerSize is the space reserved in front of the slot array: one
// cache line each for the head and tail words.
const headerSize = 2 * int(ringq.CacheLineSize)

// ErrRegionSize indicates the backing file does not match the region
// footprint implied by the capacity and element type passed to Attach.
var ErrRegionSize = errors.New("shm: region size mismatch")

// Queue is an SPSC queue whose indices and slots live in a shared
// mapping. The cached views of the opposite index are process-local,
// so the cross-core (and cross-process) traffic pattern is the same
// as the in-process queue's.
//
// Exactly one process may enqueue and exactly one may dequeue.
type Queue[T any] struct {
	head       *atomix.Uint64
	tail       *atomix.Uint64
	cachedHead uint64 // producer-local
	cachedTail uint64 // consumer-local
	slots      []T    // view over the mapped cells
	mask       uint64
	mem        []byte
	path       string
}

// RegionSize returns the exact mapping footprint for a queue of the
// given capacity and element type.
func RegionSize[T any](capacity int) int {
	var zero T
	return headerSize + capacity*int(unsafe.Sizeof(zero))
}

// Create builds the backing file at path, sizes it to the region
// footprint, maps it and initializes the queue in place. It fails if
// the file already exists.
//
// capacity must be a power of two >= 2; usable capacity is capacity-1.
func Create[T any](path string, capacity int) (*Queue[T], error) {
	if err := checkShareable[T](); err != nil {
		return nil, err
	}
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, errors.New("shm: capacity must be a power of two >= 2")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("shm: create region: %w", err)
	}
	defer f.Close()

	size := RegionSize[T](capacity)
	if err := unix.Ftruncate(int(f.Fd()), int64(size)); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("shm: size region: %w", err)
	}

	q, err := mapRegion[T](f, path, capacity, size)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	// Ftruncate zero-fills, but make the initial indices explicit so
	// the attaching side never observes garbage from a recycled file.
	q.head.StoreRelaxed(0)
	q.tail.StoreRelease(0)
	return q, nil
}

// Attach maps an existing region created by Create in another
// process. capacity and T must match the creator's exactly; the only
// check performed is that the file size equals the implied footprint.
func Attach[T any](path string, capacity int) (*Queue[T], error) {
	if err := checkShareable[T](); err != nil {
		return nil, err
	}
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, errors.New("shm: capacity must be a power of two >= 2")
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: attach region: %w", err)
	}
	defer f.Close()

	size := RegionSize[T](capacity)
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("shm: attach region: %w", err)
	}
	if st.Size() != int64(size) {
		return nil, fmt.Errorf("%w: file %d bytes, want %d", ErrRegionSize, st.Size(), size)
	}

	return mapRegion[T](f, path, capacity, size)
}

// mapRegion maps size bytes of f and builds the queue views over the
// fixed offsets. The fd can be closed afterwards; the mapping stays.
func mapRegion[T any](f *os.File, path string, capacity, size int) (*Queue[T], error) {
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shm: map region: %w", err)
	}

	return &Queue[T]{
		head:  (*atomix.Uint64)(unsafe.Pointer(&mem[0])),
		tail:  (*atomix.Uint64)(unsafe.Pointer(&mem[ringq.CacheLineSize])),
		slots: unsafe.Slice((*T)(unsafe.Pointer(&mem[headerSize])), capacity),
		mask:  uint64(capacity - 1),
		mem:   mem,
		path:  path,
	}, nil
}

// checkShareable rejects element types whose representation contains
// process-local references. Walks the type the way the protocol sees
// it: structs and arrays recurse, everything pointer-shaped fails.
func checkShareable[T any]() error {
	var zero T
	if t := reflect.TypeOf(zero); t == nil || hasPointers(t) {
		return fmt.Errorf("shm: element type %T is not shareable across processes", zero)
	}
	if unsafe.Sizeof(zero) == 0 {
		return fmt.Errorf("shm: element type %T has no representation to share", zero)
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Enqueue adds an element (creator-or-attacher acting as producer).
// Returns ErrWouldBlock if the queue is full.
func (q *Queue[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead >= q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead >= q.mask {
			return ringq.ErrWouldBlock
		}
	}

	q.slots[tail&q.mask] = *elem
	q.tail.StoreRelease(tail + 1)
	return nil
}

// Dequeue removes and returns an element (consumer side).
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *Queue[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			var zero T
			return zero, ringq.ErrWouldBlock
		}
	}

	elem := q.slots[head&q.mask]
	q.head.StoreRelease(head + 1)
	return elem, nil
}

// EnqueueBatch adds up to len(src) elements with a single release
// store of tail. Returns the number actually enqueued.
func (q *Queue[T]) EnqueueBatch(src []T) int {
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
	first := uint64(len(q.slots)) - idx
	if first > n {
		first = n
	}
	copy(q.slots[idx:idx+first], src[:first])
	copy(q.slots[:n-first], src[first:n])

	q.tail.StoreRelease(tail + n)
	return int(n)
}

// DequeueBatch removes up to len(dst) elements with a single release
// store of head. Returns the number actually dequeued.
func (q *Queue[T]) DequeueBatch(dst []T) int {
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
	first := uint64(len(q.slots)) - idx
	if first > n {
		first = n
	}
	copy(dst[:first], q.slots[idx:idx+first])
	copy(dst[first:n], q.slots[:n-first])

	q.head.StoreRelease(head + n)
	return int(n)
}

// Cap returns the usable capacity.
func (q *Queue[T]) Cap() int {
	return int(q.mask)
}

// Len returns a snapshot of the occupancy.
func (q *Queue[T]) Len() int {
	tail := q.tail.Load()
	head := q.head.Load()
	if head >= tail {
		return 0
	}
	return int(tail - head)
}

// Empty reports whether the queue was empty at the snapshot.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Full reports whether the queue was full at the snapshot.
func (q *Queue[T]) Full() bool {
	return q.Len() == q.Cap()
}

// Close unmaps this process's view of the region. The queue must not
// be used afterwards. The backing file stays; see Unlink.
func (q *Queue[T]) Close() error {
	if q.mem == nil {
		return nil
	}
	mem := q.mem
	q.mem, q.head, q.tail, q.slots = nil, nil, nil, nil
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("shm: unmap region: %w", err)
	}
	return nil
}

// Unlink removes the backing file. Existing mappings keep working;
// new Attach calls will fail. Typically the creator unlinks after
// both sides have attached, or during teardown.
func (q *Queue[T]) Unlink() error {
	if err := os.Remove(q.path); err != nil {
		return fmt.Errorf("shm: unlink region: %w", err)
	}
	return nil
}
