package mmio

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// ErrUnsupported is returned by Map on platforms without /dev/mem mapping.
var ErrUnsupported = errors.New("mmio: physical mapping not supported on this platform")

// DefaultDevice is the physical memory device opened by Map.
const DefaultDevice = "/dev/mem"

// Window is a mapped physical register range.
type Window struct {
	mem      []byte
	delta    uintptr // offset of the requested address inside mem
	size     uintptr
	phys     uintptr
	readOnly bool
}

// Phys returns the physical address of offset 0.
func (w *Window) Phys() uintptr { return w.phys }

func (w *Window) word(off uintptr) *uint32 {
	if off%4 != 0 || off+4 > w.size {
		panic(fmt.Sprintf("mmio: offset %#x misaligned or outside %#x-byte window", off, w.size))
	}
	return (*uint32)(unsafe.Pointer(&w.mem[w.delta+off]))
}

func (w *Window) Load32(off uintptr) uint32 { return atomic.LoadUint32(w.word(off)) }

func (w *Window) Store32(off uintptr, v uint32) {
	if w.readOnly {
		panic(fmt.Sprintf("mmio: store to %#x through read-only window", w.phys+off))
	}
	atomic.StoreUint32(w.word(off), v)
}

// pageSpan returns the page-aligned start and length covering [phys, phys+size).
func pageSpan(phys, size, page uintptr) (start, delta, length uintptr) {
	start = phys &^ (page - 1)
	delta = phys - start
	length = (delta + size + page - 1) &^ (page - 1)
	return start, delta, length
}
