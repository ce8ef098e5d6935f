package sja1000

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/kstaniek/go-canregs/internal/mmio"
)

// countingBus records how many loads and stores reached the storage.
type countingBus struct {
	mmio.Bus
	loads, stores int
}

func (c *countingBus) Load32(off uintptr) uint32 { c.loads++; return c.Bus.Load32(off) }

func (c *countingBus) Store32(off uintptr, v uint32) { c.stores++; c.Bus.Store32(off, v) }

func TestLayoutsTileWord(t *testing.T) {
	for _, r := range Registers() {
		if err := r.Layout.Check(); err != nil {
			t.Fatalf("%s: %v", r.Name, err)
		}
		var sum uint
		for _, f := range r.Layout.Fields {
			sum += f.Width
		}
		if sum != 32 {
			t.Fatalf("%s: widths sum to %d", r.Name, sum)
		}
	}
}

func TestLayoutCheckRejects(t *testing.T) {
	overlap := Layout{"X", []Field{{"A", 0, 4}, {"B", 3, 2}, reserved(5, 27)}}
	if err := overlap.Check(); err == nil {
		t.Fatalf("overlap not detected")
	}
	gap := Layout{"X", []Field{{"A", 0, 4}, reserved(5, 27)}}
	if err := gap.Check(); err == nil {
		t.Fatalf("gap not detected")
	}
	wide := Layout{"X", []Field{{"A", 30, 4}, reserved(0, 30)}}
	if err := wide.Check(); err == nil {
		t.Fatalf("field past bit 31 not detected")
	}
}

func TestRegisterOffsets(t *testing.T) {
	want := map[string]uintptr{
		"MOD": 0x00, "CMR": 0x04, "SR": 0x08, "IR": 0x0C, "IER": 0x10,
		"BTR0": 0x18, "BTR1": 0x1C, "OCR": 0x20, "ALC": 0x2C, "ECC": 0x30,
		"EWLR": 0x34, "RXERR": 0x38, "TXERR": 0x3C, "FIR": 0x40,
		"RMC": 0x74, "RBSA": 0x78, "CDR": 0x7C,
	}
	regs := Registers()
	if len(regs) != len(want) {
		t.Fatalf("got %d registers, want %d", len(regs), len(want))
	}
	for _, r := range regs {
		if off, ok := want[r.Name]; !ok || off != r.Offset {
			t.Fatalf("%s at %#x, want %#x", r.Name, r.Offset, off)
		}
	}
	if Size != 0x88 || BaseAddress != 0x6002B000 {
		t.Fatalf("window %#x@%#x", Size, BaseAddress)
	}
	if err := checkRegisters([]Register{regs[1], regs[0]}); err == nil {
		t.Fatalf("out-of-order table accepted")
	}
}

func TestFieldPutTruncates(t *testing.T) {
	if got := BTR1TSEG2.Put(0, 0xFF); got != 0x70 {
		t.Fatalf("TSEG2 put 0xFF = %#x, want 0x70", got)
	}
	if got := BTR0BRP.Put(0xFFFFFFFF, 0); got != 0xFFFFE000 {
		t.Fatalf("BRP clear = %#x", got)
	}
	if got := BTR0SJW.Get(0xC000); got != 3 {
		t.Fatalf("SJW = %d", got)
	}
}

// Writing one named field must leave every other bit, reserved ones
// included, as it was.
func TestSetFieldPreservesOtherBits(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	mem := mmio.NewMem(Size)
	for _, r := range Registers() {
		if r.Access&SelfClearing != 0 {
			continue
		}
		reg := Reg[uint32]{bus: mem, off: r.Offset}
		for _, f := range r.Layout.Named() {
			for i := 0; i < 16; i++ {
				before := rng.Uint32()
				v := rng.Uint32()
				reg.Store(before)
				reg.SetField(f, v)
				after := reg.Load()
				if after&^f.Mask() != before&^f.Mask() {
					t.Fatalf("%s.%s: other bits changed %#08x -> %#08x", r.Name, f.Name, before, after)
				}
				if got := f.Get(after); got != v&(f.Mask()>>f.Shift) {
					t.Fatalf("%s.%s: field %#x, want %#x", r.Name, f.Name, got, v)
				}
			}
		}
	}
}

func TestCommandWriteIsDirect(t *testing.T) {
	bus := &countingBus{Bus: NewSim()}
	c := New(bus)
	c.CMR.Issue(CmdTransmit | CmdReleaseRx)
	c.CMR.SetField(CmdCDO, 1)
	if bus.loads != 0 || bus.stores != 2 {
		t.Fatalf("loads=%d stores=%d, want 0/2", bus.loads, bus.stores)
	}
	r, _ := Lookup("CMR")
	if err := c.SetField(r, CmdAT, 1); err != nil {
		t.Fatalf("SetField CMR: %v", err)
	}
	if bus.loads != 0 {
		t.Fatalf("command field write performed a read")
	}
}

func TestSimSideEffects(t *testing.T) {
	mem := NewSim()
	c := New(mem)
	c.CMR.Issue(CmdTransmit)
	if mem.Peek(OffCMR) != 0 {
		t.Fatalf("command bits must self-clear")
	}
	mem.Poke(OffIR, uint32(IntRX|IntBusError))
	if got := c.IR.Load(); got != IntRX|IntBusError {
		t.Fatalf("IR = %v", got)
	}
	if got := c.IR.Load(); got != 0 {
		t.Fatalf("IR must clear on read, got %v", got)
	}
	c.SR.Store(0)
	if !c.SR.Load().TxBufferFree() {
		t.Fatalf("SR must ignore writes")
	}
}

func TestControllerAccessChecks(t *testing.T) {
	c := New(NewSim())
	sr, _ := Lookup("sr")
	if err := c.Store(sr, 1); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("Store SR: %v", err)
	}
	if err := c.SetField(sr, StatusBS, 1); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("SetField SR: %v", err)
	}
	cmr, _ := Lookup("CMR")
	if _, err := c.Load(cmr); !errors.Is(err, ErrWriteOnly) {
		t.Fatalf("Load CMR: %v", err)
	}
	ewlr, _ := Lookup("EWLR")
	if err := c.Store(ewlr, 0x1FF); err != nil {
		t.Fatalf("Store EWLR: %v", err)
	}
	if v := c.EWLR.Load().Value(); v != 0xFF {
		t.Fatalf("EWLR = %d", v)
	}
}

func TestLookupField(t *testing.T) {
	r, f, ok, err := LookupField("mod.rm")
	if err != nil || !ok || r.Name != "MOD" || f != ModeRM {
		t.Fatalf("mod.rm -> %v %v %v %v", r.Name, f, ok, err)
	}
	if _, _, ok, err := LookupField("BTR0"); err != nil || ok {
		t.Fatalf("BTR0 -> ok=%v err=%v", ok, err)
	}
	if _, _, _, err := LookupField("XYZ"); !errors.Is(err, ErrUnknownRegister) {
		t.Fatalf("XYZ: %v", err)
	}
	if _, _, _, err := LookupField("SR.reserved_8"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("reserved bits must not be addressable: %v", err)
	}
	if _, f, _, _ := LookupField("IER.BEIE"); f.Shift != 7 {
		t.Fatalf("IER.BEIE shift %d", f.Shift)
	}
}

func TestModeAndTiming(t *testing.T) {
	c := New(NewSim())
	if !c.MOD.Load().ResetMode() || c.ActiveMailbox() != ViewFilter {
		t.Fatalf("sim must power on in reset mode")
	}
	c.MOD.Modify(func(m Mode) Mode { return m.WithListenOnly(true) })
	c.MOD.SetField(ModeRM, 0)
	m := c.MOD.Load()
	if m.ResetMode() || !m.ListenOnly() || c.ActiveMailbox() != ViewFrame {
		t.Fatalf("mode %#x", uint32(m))
	}

	c.BTR0.Store(NewBusTiming0(0x1ABC, 2))
	if b := c.BTR0.Load(); b.Prescaler() != 0x1ABC || b.SyncJump() != 2 {
		t.Fatalf("BTR0 %#x", uint32(b))
	}
	c.BTR1.Store(NewBusTiming1(0xC, 0x5, true))
	if b := c.BTR1.Load(); b.Seg1() != 0xC || b.Seg2() != 5 || !b.TripleSample() || uint32(b) != 0xDC {
		t.Fatalf("BTR1 %#x", uint32(b))
	}
	c.CDR.SetField(CDRCOFF, 1)
	c.CDR.SetField(CDRCOD, 7)
	if d := c.CDR.Load(); !d.ClockOff() || d.Divider() != 7 {
		t.Fatalf("CDR %#x", uint32(d))
	}
}
