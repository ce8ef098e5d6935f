//go:build linux

package mmio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Map maps size bytes of physical memory starting at phys from device
// (normally /dev/mem). The device is opened O_SYNC so the kernel maps the
// range uncached.
func Map(device string, phys, size uintptr, readOnly bool) (*Window, error) {
	flags, prot := unix.O_RDWR, unix.PROT_READ|unix.PROT_WRITE
	if readOnly {
		flags, prot = unix.O_RDONLY, unix.PROT_READ
	}
	fd, err := unix.Open(device, flags|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	// The mapping keeps its own reference to the device.
	defer func() { _ = unix.Close(fd) }()

	start, delta, length := pageSpan(phys, size, uintptr(unix.Getpagesize()))
	mem, err := unix.Mmap(fd, int64(start), int(length), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s@%#x+%#x: %w", device, start, length, err)
	}
	return &Window{mem: mem, delta: delta, size: size, phys: phys, readOnly: readOnly}, nil
}

// Close unmaps the window. The Window must not be used afterwards.
func (w *Window) Close() error {
	if w.mem == nil {
		return nil
	}
	err := unix.Munmap(w.mem)
	w.mem = nil
	if err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
