package sja1000

import (
	"fmt"

	"github.com/kstaniek/go-canregs/internal/can"
)

// MailboxView names the interpretation of the mailbox region that the
// controller mode currently makes valid.
type MailboxView uint8

const (
	ViewFilter MailboxView = iota // reset mode: acceptance code/mask
	ViewFrame                     // operating mode: tx/rx frame buffer
)

func (v MailboxView) String() string {
	switch v {
	case ViewFilter:
		return "acceptance-filter"
	case ViewFrame:
		return "frame-buffer"
	default:
		return fmt.Sprintf("MailboxView(%d)", uint8(v))
	}
}

// Word positions inside the mailbox.
const (
	mbxFIR     = 0
	mbxID      = 1
	mbxStdData = 3
	mbxExtData = 5
	mbxCode    = 0
	mbxMask    = 4
	filterLen  = 4
)

// Mailbox is the 13-word region at OffMailbox. Filter and Frame are two
// views of the same words; which one is meaningful depends on MOD.RM,
// tracked by the caller.
type Mailbox struct {
	bus Bus
	off uintptr
}

func (m Mailbox) Filter() AcceptanceFilter { return AcceptanceFilter{m} }

func (m Mailbox) Frame() FrameBuffer { return FrameBuffer{m} }

func (m Mailbox) wordOff(i int) uintptr {
	if i < 0 || i >= MailboxWords {
		panic(fmt.Sprintf("sja1000: mailbox word %d out of range", i))
	}
	return m.off + uintptr(i)*wordSize
}

// Word reads mailbox word i without interpretation.
func (m Mailbox) Word(i int) uint32 { return m.bus.Load32(m.wordOff(i)) }

func (m Mailbox) lane(i int) uint8 { return uint8(ByteLow8.Get(m.bus.Load32(m.wordOff(i)))) }

// setLane updates the low byte of word i, keeping the reserved upper bits.
func (m Mailbox) setLane(i int, v uint8) {
	off := m.wordOff(i)
	m.bus.Store32(off, ByteLow8.Put(m.bus.Load32(off), uint32(v)))
}

// AcceptanceFilter is the reset-mode view: four code bytes, four mask
// bytes, five reserved words.
type AcceptanceFilter struct{ m Mailbox }

func (a AcceptanceFilter) Code(i int) uint8 { return a.m.lane(mbxCode + filterIndex(i)) }

func (a AcceptanceFilter) SetCode(i int, v uint8) { a.m.setLane(mbxCode+filterIndex(i), v) }

func (a AcceptanceFilter) Mask(i int) uint8 { return a.m.lane(mbxMask + filterIndex(i)) }

func (a AcceptanceFilter) SetMask(i int, v uint8) { a.m.setLane(mbxMask+filterIndex(i), v) }

// Load reads all code and mask bytes.
func (a AcceptanceFilter) Load() (code, mask [4]uint8) {
	for i := range filterLen {
		code[i] = a.Code(i)
	}
	for i := range filterLen {
		mask[i] = a.Mask(i)
	}
	return code, mask
}

// Store writes all code bytes, then all mask bytes.
func (a AcceptanceFilter) Store(code, mask [4]uint8) {
	for i, v := range code {
		a.SetCode(i, v)
	}
	for i, v := range mask {
		a.SetMask(i, v)
	}
}

func filterIndex(i int) int {
	if i < 0 || i >= filterLen {
		panic(fmt.Sprintf("sja1000: filter index %d out of range", i))
	}
	return i
}

// FrameBuffer is the operating-mode view: frame information record, then
// either 2 identifier lanes + 8 data bytes (standard) or 4 lanes + 8 data
// bytes (extended).
type FrameBuffer struct{ m Mailbox }

// Info is the frame information record register.
func (b FrameBuffer) Info() Reg[FrameInfo] {
	return Reg[FrameInfo]{bus: b.m.bus, off: b.m.wordOff(mbxFIR)}
}

func (b FrameBuffer) StdID() uint32 {
	return DecodeStdID([2]uint8{b.m.lane(mbxID), b.m.lane(mbxID + 1)})
}

func (b FrameBuffer) SetStdID(id uint32) {
	for i, v := range EncodeStdID(id) {
		b.m.setLane(mbxID+i, v)
	}
}

func (b FrameBuffer) ExtID() uint32 {
	var l [4]uint8
	for i := range l {
		l[i] = b.m.lane(mbxID + i)
	}
	return DecodeExtID(l)
}

func (b FrameBuffer) SetExtID(id uint32) {
	for i, v := range EncodeExtID(id) {
		b.m.setLane(mbxID+i, v)
	}
}

func dataWord(ff FrameFormat, i int) int {
	if i < 0 || i >= can.MaxDataLen {
		panic(fmt.Sprintf("sja1000: data index %d out of range", i))
	}
	if ff == Extended {
		return mbxExtData + i
	}
	return mbxStdData + i
}

// Data reads payload byte i of a frame laid out in format ff.
func (b FrameBuffer) Data(ff FrameFormat, i int) uint8 { return b.m.lane(dataWord(ff, i)) }

func (b FrameBuffer) SetData(ff FrameFormat, i int, v uint8) { b.m.setLane(dataWord(ff, i), v) }

// Read decodes the frame currently in the buffer. The format flag selects
// the identifier layout; at most 8 data bytes are copied while Len keeps
// the raw DLC.
func (b FrameBuffer) Read() can.Frame {
	var f can.Frame
	fir := b.Info().Load()
	ff := fir.Format()
	if ff == Extended {
		f.CANID = b.ExtID() | can.CAN_EFF_FLAG
	} else {
		f.CANID = b.StdID()
	}
	f.Len = fir.DLC()
	if fir.RTR() == RTRSet {
		f.CANID |= can.CAN_RTR_FLAG
		return f
	}
	for i := range fir.DataLen() {
		f.Data[i] = b.Data(ff, i)
	}
	return f
}

// Write stages f in the buffer: FIR first, then identifier lanes, then data.
// The undocumented FIR bits and the reserved lane bits are written back as
// read. In operating mode a read returns the receive buffer, so on silicon
// those bits come from the last received frame, not from the transmit
// buffer; only a Bus that models one shared buffer sees them unchanged.
func (b FrameBuffer) Write(f can.Frame) {
	ff, rtr := Standard, NoRTR
	if f.Extended() {
		ff = Extended
	}
	if f.Remote() {
		rtr = RTRSet
	}
	b.Info().Modify(func(old FrameInfo) FrameInfo {
		w := FIRDLC.Put(uint32(old), uint32(f.Len))
		w = FIRRTR.Put(w, uint32(rtr))
		return FrameInfo(FIRFF.Put(w, uint32(ff)))
	})
	if ff == Extended {
		b.SetExtID(f.ID())
	} else {
		b.SetStdID(f.ID())
	}
	if rtr == RTRSet {
		return
	}
	for i, v := range f.Payload() {
		b.SetData(ff, i, v)
	}
}
