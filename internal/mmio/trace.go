package mmio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kstaniek/go-canregs/internal/logging"
)

// Trace logs every access to the wrapped Bus at debug level.
type Trace struct {
	bus    Bus
	logger *slog.Logger
	name   func(off uintptr) string
}

type TraceOption func(*Trace)

// WithTraceLogger overrides the global logger.
func WithTraceLogger(l *slog.Logger) TraceOption {
	return func(t *Trace) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithNames labels offsets in log lines (e.g. "SR" instead of 0x8).
func WithNames(fn func(off uintptr) string) TraceOption {
	return func(t *Trace) { t.name = fn }
}

func NewTrace(bus Bus, opts ...TraceOption) *Trace {
	t := &Trace{bus: bus, logger: logging.L()}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Trace) label(off uintptr) string {
	if t.name != nil {
		if n := t.name(off); n != "" {
			return n
		}
	}
	return fmt.Sprintf("%#02x", off)
}

func (t *Trace) Load32(off uintptr) uint32 {
	v := t.bus.Load32(off)
	if t.logger.Enabled(context.Background(), slog.LevelDebug) {
		t.logger.Debug("reg_load", "reg", t.label(off), "off", off, "value", fmt.Sprintf("%#08x", v))
	}
	return v
}

func (t *Trace) Store32(off uintptr, v uint32) {
	if t.logger.Enabled(context.Background(), slog.LevelDebug) {
		t.logger.Debug("reg_store", "reg", t.label(off), "off", off, "value", fmt.Sprintf("%#08x", v))
	}
	t.bus.Store32(off, v)
}
