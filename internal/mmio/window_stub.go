//go:build !linux

package mmio

// Map is not available off Linux.
func Map(device string, phys, size uintptr, readOnly bool) (*Window, error) {
	return nil, ErrUnsupported
}

func (w *Window) Close() error { return nil }
