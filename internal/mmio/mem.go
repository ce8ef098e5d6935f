// Package mmio provides word-addressed register storage: a mapped physical
// window for real hardware, an in-process backing for tests and simulation,
// and a tracing wrapper.
//
// All implementations access words with sync/atomic, which the Go compiler
// never elides or reorders with respect to other atomic accesses.
package mmio

import (
	"fmt"
	"sync/atomic"
)

// Bus is the access contract shared by every implementation.
type Bus interface {
	Load32(off uintptr) uint32
	Store32(off uintptr, v uint32)
}

// StoreHook decides what a register latches when v is written over old.
type StoreHook func(old, v uint32) uint32

// LoadHook returns the value seen by a read of cur and the value the
// register holds afterwards (for read-to-clear registers).
type LoadHook func(cur uint32) (read, next uint32)

// Mem is an in-process register window. Hooks model hardware side effects
// such as self-clearing command bits; install them before the Mem is shared.
type Mem struct {
	words   []uint32
	onStore map[uintptr]StoreHook
	onLoad  map[uintptr]LoadHook
}

// NewMem allocates a zeroed window of size bytes (rounded up to a word).
func NewMem(size uintptr) *Mem {
	return &Mem{
		words:   make([]uint32, (size+3)/4),
		onStore: make(map[uintptr]StoreHook),
		onLoad:  make(map[uintptr]LoadHook),
	}
}

// Size returns the window length in bytes.
func (m *Mem) Size() uintptr { return uintptr(len(m.words)) * 4 }

func (m *Mem) index(off uintptr) int {
	if off%4 != 0 || off/4 >= uintptr(len(m.words)) {
		panic(fmt.Sprintf("mmio: offset %#x misaligned or outside %#x-byte window", off, m.Size()))
	}
	return int(off / 4)
}

// OnStore installs a store hook for off.
func (m *Mem) OnStore(off uintptr, h StoreHook) { m.index(off); m.onStore[off] = h }

// OnLoad installs a load hook for off.
func (m *Mem) OnLoad(off uintptr, h LoadHook) { m.index(off); m.onLoad[off] = h }

func (m *Mem) Load32(off uintptr) uint32 {
	p := &m.words[m.index(off)]
	v := atomic.LoadUint32(p)
	if h := m.onLoad[off]; h != nil {
		read, next := h(v)
		atomic.StoreUint32(p, next)
		return read
	}
	return v
}

func (m *Mem) Store32(off uintptr, v uint32) {
	p := &m.words[m.index(off)]
	if h := m.onStore[off]; h != nil {
		v = h(atomic.LoadUint32(p), v)
	}
	atomic.StoreUint32(p, v)
}

// Peek reads a word bypassing hooks, the way a test observes latched state.
func (m *Mem) Peek(off uintptr) uint32 { return atomic.LoadUint32(&m.words[m.index(off)]) }

// Poke sets a word bypassing hooks, the way hardware updates status.
func (m *Mem) Poke(off uintptr, v uint32) { atomic.StoreUint32(&m.words[m.index(off)], v) }

// SelfClearing latches nothing: command bits act and vanish.
func SelfClearing(old, v uint32) uint32 { return 0 }

// ReadToClear returns the current value and clears the register.
func ReadToClear(cur uint32) (uint32, uint32) { return cur, 0 }

// ReadOnly ignores writes.
func ReadOnly(old, v uint32) uint32 { return old }
