// Package sja1000 models the register surface of an SJA1000-compatible CAN
// controller (the ESP32-S3 TWAI block): register offsets, bit-field views,
// the identifier byte-lane codec and the dual-use mailbox region.
//
// The package owns no memory. Every access goes through a Bus so that reads
// and writes reach the device in program order and are never cached.
package sja1000

import "fmt"

// BaseAddress is the physical address of the register block.
const BaseAddress uintptr = 0x6002B000

// Register offsets from BaseAddress. Every register is one 32-bit word with
// the significant bits in the low byte lanes.
const (
	OffMOD       uintptr = 0x00
	OffCMR       uintptr = 0x04
	OffSR        uintptr = 0x08
	OffIR        uintptr = 0x0C
	OffIER       uintptr = 0x10
	offReserved0 uintptr = 0x14
	OffBTR0      uintptr = 0x18
	OffBTR1      uintptr = 0x1C
	OffOCR       uintptr = 0x20
	offReserved1 uintptr = 0x24 // two words
	OffALC       uintptr = 0x2C
	OffECC       uintptr = 0x30
	OffEWLR      uintptr = 0x34
	OffRXERR     uintptr = 0x38
	OffTXERR     uintptr = 0x3C
	OffMailbox   uintptr = 0x40 // MailboxWords words
	OffRMC       uintptr = 0x74
	OffRBSA      uintptr = 0x78
	OffCDR       uintptr = 0x7C
	OffIRAM      uintptr = 0x80 // two words

	MailboxWords = 13
	wordSize     = 4

	// Size is the length of the register window in bytes.
	Size uintptr = 0x88
)

// Build-time layout checks: each index is out of range unless the offsets
// chain exactly.
var (
	_ = [1]struct{}{}[offReserved0-OffIER-wordSize]
	_ = [1]struct{}{}[OffBTR0-offReserved0-wordSize]
	_ = [1]struct{}{}[OffALC-offReserved1-2*wordSize]
	_ = [1]struct{}{}[OffRMC-OffMailbox-MailboxWords*wordSize]
	_ = [1]struct{}{}[OffIRAM-OffCDR-wordSize]
	_ = [1]struct{}{}[Size-OffIRAM-2*wordSize]
)

// Bus is the externally owned storage behind the register window. Offsets
// are relative to the start of the window and always word aligned.
// Implementations must perform every call as a real access: no caching,
// no merging, no reordering.
type Bus interface {
	Load32(off uintptr) uint32
	Store32(off uintptr, v uint32)
}

// Access describes what software may do with a register.
type Access uint8

const (
	Readable Access = 1 << iota
	Writable
	// ReadSideEffect marks registers whose read changes hardware state
	// (IR clears pending flags, ALC/ECC re-arm their capture).
	ReadSideEffect
	// SelfClearing marks command registers: write-only, bits reset by hardware.
	SelfClearing

	ReadWrite = Readable | Writable
)

func (a Access) String() string {
	switch {
	case a&SelfClearing != 0:
		return "cmd"
	case a&ReadWrite == ReadWrite:
		return "rw"
	case a&Readable != 0 && a&ReadSideEffect != 0:
		return "rc"
	case a&Readable != 0:
		return "r"
	case a&Writable != 0:
		return "w"
	default:
		return "-"
	}
}

// Register describes one named register of the map.
type Register struct {
	Name   string
	Offset uintptr
	Access Access
	Layout Layout
	Desc   string
}

var registers = []Register{
	{"MOD", OffMOD, ReadWrite, ModeLayout, "mode"},
	{"CMR", OffCMR, Writable | SelfClearing, CommandLayout, "command"},
	{"SR", OffSR, Readable, StatusLayout, "status"},
	{"IR", OffIR, Readable | ReadSideEffect, InterruptLayout, "interrupt flags"},
	{"IER", OffIER, ReadWrite, InterruptEnableLayout, "interrupt enable"},
	{"BTR0", OffBTR0, ReadWrite, BTR0Layout, "bus timing 0"},
	{"BTR1", OffBTR1, ReadWrite, BTR1Layout, "bus timing 1"},
	{"OCR", OffOCR, ReadWrite, OCRLayout, "output control"},
	{"ALC", OffALC, Readable | ReadSideEffect, byteLayout("ALC"), "arbitration lost capture"},
	{"ECC", OffECC, Readable | ReadSideEffect, byteLayout("ECC"), "error code capture"},
	{"EWLR", OffEWLR, ReadWrite, byteLayout("EWLR"), "error warning limit"},
	{"RXERR", OffRXERR, ReadWrite, byteLayout("RXERR"), "rx error counter"},
	{"TXERR", OffTXERR, ReadWrite, byteLayout("TXERR"), "tx error counter"},
	{"FIR", OffMailbox, ReadWrite, FIRLayout, "frame information (operating mode)"},
	{"RMC", OffRMC, Readable, byteLayout("RMC"), "rx message counter"},
	{"RBSA", OffRBSA, ReadWrite, byteLayout("RBSA"), "rx buffer start address"},
	{"CDR", OffCDR, ReadWrite, CDRLayout, "clock divider"},
}

func init() {
	if err := checkRegisters(registers); err != nil {
		panic(err)
	}
}

func checkRegisters(regs []Register) error {
	var prev uintptr
	for i, r := range regs {
		if err := r.Layout.Check(); err != nil {
			return err
		}
		if r.Offset%wordSize != 0 || r.Offset >= Size {
			return fmt.Errorf("%s: offset %#x outside aligned window", r.Name, r.Offset)
		}
		if i > 0 && r.Offset <= prev {
			return fmt.Errorf("%s: offset %#x not after %#x", r.Name, r.Offset, prev)
		}
		prev = r.Offset
	}
	return nil
}

// Registers returns the register table in address order.
func Registers() []Register {
	out := make([]Register, len(registers))
	copy(out, registers)
	return out
}

// Reg is a typed accessor for one register word. Field writes are
// read-modify-write so that other fields and reserved bits keep whatever the
// hardware holds.
type Reg[T ~uint32] struct {
	bus Bus
	off uintptr
}

func (r Reg[T]) Offset() uintptr { return r.off }

// Load reads the whole word.
func (r Reg[T]) Load() T { return T(r.bus.Load32(r.off)) }

// Store writes the whole word.
func (r Reg[T]) Store(v T) { r.bus.Store32(r.off, uint32(v)) }

// Field reads one field.
func (r Reg[T]) Field(f Field) uint32 { return f.Get(r.bus.Load32(r.off)) }

// SetField replaces one field, truncating v to the field width.
func (r Reg[T]) SetField(f Field, v uint32) {
	r.bus.Store32(r.off, f.Put(r.bus.Load32(r.off), v))
}

// Modify applies fn to the current word and writes the result back.
func (r Reg[T]) Modify(fn func(T) T) { r.Store(fn(r.Load())) }

// CmdReg is the write-only command register. Writes are issued without a
// preceding read; unset bits request nothing.
type CmdReg struct {
	bus Bus
	off uintptr
}

func (c CmdReg) Offset() uintptr { return c.off }

// Issue writes cmd.
func (c CmdReg) Issue(cmd Command) { c.bus.Store32(c.off, uint32(cmd)) }

// SetField writes a single command field with every other bit zero.
func (c CmdReg) SetField(f Field, v uint32) { c.bus.Store32(c.off, f.Put(0, v)) }

// Controller binds the register map to a Bus.
type Controller struct {
	bus Bus

	MOD   Reg[Mode]
	CMR   CmdReg
	SR    Reg[Status]
	IR    Reg[Interrupt]
	IER   Reg[Interrupt]
	BTR0  Reg[BusTiming0]
	BTR1  Reg[BusTiming1]
	OCR   Reg[OutputControl]
	ALC   Reg[Capture8]
	ECC   Reg[Capture8]
	EWLR  Reg[Capture8]
	RXERR Reg[Capture8]
	TXERR Reg[Capture8]
	RMC   Reg[Capture8]
	RBSA  Reg[Capture8]
	CDR   Reg[ClockDivider]
}

// New returns a Controller whose offset 0 is the start of bus.
func New(bus Bus) *Controller {
	return &Controller{
		bus:   bus,
		MOD:   Reg[Mode]{bus, OffMOD},
		CMR:   CmdReg{bus, OffCMR},
		SR:    Reg[Status]{bus, OffSR},
		IR:    Reg[Interrupt]{bus, OffIR},
		IER:   Reg[Interrupt]{bus, OffIER},
		BTR0:  Reg[BusTiming0]{bus, OffBTR0},
		BTR1:  Reg[BusTiming1]{bus, OffBTR1},
		OCR:   Reg[OutputControl]{bus, OffOCR},
		ALC:   Reg[Capture8]{bus, OffALC},
		ECC:   Reg[Capture8]{bus, OffECC},
		EWLR:  Reg[Capture8]{bus, OffEWLR},
		RXERR: Reg[Capture8]{bus, OffRXERR},
		TXERR: Reg[Capture8]{bus, OffTXERR},
		RMC:   Reg[Capture8]{bus, OffRMC},
		RBSA:  Reg[Capture8]{bus, OffRBSA},
		CDR:   Reg[ClockDivider]{bus, OffCDR},
	}
}

// Mailbox returns the shared mailbox region.
func (c *Controller) Mailbox() Mailbox { return Mailbox{bus: c.bus, off: OffMailbox} }

// ActiveMailbox reports which mailbox view matches the current mode: the
// acceptance filter in reset mode, the frame buffer otherwise.
func (c *Controller) ActiveMailbox() MailboxView {
	if c.MOD.Load().ResetMode() {
		return ViewFilter
	}
	return ViewFrame
}

// Load reads the word of a table register. Write-only registers return ErrWriteOnly.
func (c *Controller) Load(r Register) (uint32, error) {
	if r.Access&Readable == 0 {
		return 0, fmt.Errorf("%s: %w", r.Name, ErrWriteOnly)
	}
	return c.bus.Load32(r.Offset), nil
}

// Store writes the whole word of a table register.
func (c *Controller) Store(r Register, v uint32) error {
	if r.Access&Writable == 0 {
		return fmt.Errorf("%s: %w", r.Name, ErrReadOnly)
	}
	c.bus.Store32(r.Offset, v)
	return nil
}

// SetField writes one field of a table register: read-modify-write for
// normal registers, a direct write for self-clearing command registers.
func (c *Controller) SetField(r Register, f Field, v uint32) error {
	switch {
	case r.Access&Writable == 0:
		return fmt.Errorf("%s.%s: %w", r.Name, f.Name, ErrReadOnly)
	case r.Access&SelfClearing != 0:
		c.bus.Store32(r.Offset, f.Put(0, v))
	default:
		c.bus.Store32(r.Offset, f.Put(c.bus.Load32(r.Offset), v))
	}
	return nil
}
