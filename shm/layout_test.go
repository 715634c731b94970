// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shm

import (
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/ringq"
)

// TestRegionLayout pins the layout contract both sides of the mapping
// rely on: head at offset 0, tail one cache line in, slots right
// after the two-line header. An attaching process reconstructs the
// queue from these offsets alone.
func TestRegionLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring")

	q, err := Create[uint64](path, 8)
	require.NoError(t, err)
	defer q.Close()

	base := uintptr(unsafe.Pointer(&q.mem[0]))
	require.Equal(t, uintptr(0), uintptr(unsafe.Pointer(q.head))-base)
	require.Equal(t, ringq.CacheLineSize, uintptr(unsafe.Pointer(q.tail))-base)
	require.Equal(t, uintptr(headerSize), uintptr(unsafe.Pointer(&q.slots[0]))-base)

	// The index words are single machine words: the whole protocol
	// depends on an atomix.Uint64 being exactly 8 bytes in memory.
	require.Equal(t, uintptr(8), unsafe.Sizeof(*q.head))
}
