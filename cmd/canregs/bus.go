package main

import (
	"fmt"
	"log/slog"

	"github.com/kstaniek/go-canregs/internal/metrics"
	"github.com/kstaniek/go-canregs/internal/mmio"
	"github.com/kstaniek/go-canregs/internal/sja1000"
)

// openBus returns the register storage selected by cfg and its cleanup.
func openBus(cfg *appConfig, l *slog.Logger) (sja1000.Bus, func(), error) {
	var (
		bus     mmio.Bus
		cleanup = func() {}
	)
	if cfg.sim {
		bus = sja1000.NewSim()
		l.Info("bus_simulated", "size", sja1000.Size)
	} else {
		w, err := mmio.Map(cfg.device, cfg.base, sja1000.Size, cfg.readOnly)
		if err != nil {
			metrics.IncError(metrics.ErrMap)
			return nil, cleanup, fmt.Errorf("map registers: %w", err)
		}
		l.Info("bus_mapped", "device", cfg.device, "base", fmt.Sprintf("%#x", w.Phys()), "read_only", cfg.readOnly)
		bus = w
		cleanup = func() {
			if err := w.Close(); err != nil {
				l.Warn("bus_unmap_error", "error", err)
			}
		}
	}
	if cfg.trace {
		bus = mmio.NewTrace(bus, mmio.WithTraceLogger(l), mmio.WithNames(regName))
	}
	return bus, cleanup, nil
}

// regName labels a window offset for access traces.
func regName(off uintptr) string {
	for _, r := range sja1000.Registers() {
		if r.Offset == off {
			return r.Name
		}
	}
	if off >= sja1000.OffMailbox && off < sja1000.OffRMC {
		return fmt.Sprintf("MBX[%d]", (off-sja1000.OffMailbox)/4)
	}
	return ""
}
