// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is the size of the platform's cache coherence unit.
// Sourced from x/sys/cpu instead of assuming 64 bytes everywhere.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// pad is cache line padding to prevent false sharing.
type pad = cpu.CacheLinePad

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// validCapacity reports whether n is a legal slot count: a power of
// two, at least 2. One slot is always reserved to distinguish full
// from empty, so the usable capacity of a queue with n slots is n-1.
func validCapacity(n int) bool {
	return n >= 2 && n&(n-1) == 0
}
