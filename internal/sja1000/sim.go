package sja1000

import "github.com/kstaniek/go-canregs/internal/mmio"

// Power-on values of a simulated block.
const (
	simResetMode   = 0x01 // MOD.RM
	simResetStatus = 0x0C // SR.TBS | SR.TCS
	simResetEWLR   = 96
)

// NewSim returns an in-process register block with the access side effects
// of the real controller: CMR bits self-clear, SR/RMC ignore writes, IR
// clears on read, ALC/ECC release on read. Tests drive hardware-owned state
// with Poke.
func NewSim() *mmio.Mem {
	m := mmio.NewMem(Size)
	m.OnStore(OffCMR, mmio.SelfClearing)
	for _, off := range []uintptr{OffSR, OffIR, OffALC, OffECC, OffRMC} {
		m.OnStore(off, mmio.ReadOnly)
	}
	for _, off := range []uintptr{OffIR, OffALC, OffECC} {
		m.OnLoad(off, mmio.ReadToClear)
	}
	m.Poke(OffMOD, simResetMode)
	m.Poke(OffSR, simResetStatus)
	m.Poke(OffEWLR, simResetEWLR)
	return m
}
