package sja1000

// Named fields, bit 0 first. Layouts below add the reserved padding.
var (
	ModeRM  = Field{"RM", 0, 1}  // reset mode
	ModeLOM = Field{"LOM", 1, 1} // listen only
	ModeSTM = Field{"STM", 2, 1} // self test
	ModeAFM = Field{"AFM", 3, 1} // single acceptance filter
	ModeSM  = Field{"SM", 4, 1}  // sleep

	CmdTR  = Field{"TR", 0, 1}
	CmdAT  = Field{"AT", 1, 1}
	CmdRRB = Field{"RRB", 2, 1}
	CmdCDO = Field{"CDO", 3, 1}
	CmdGTS = Field{"GTS", 4, 1}

	StatusRBS = Field{"RBS", 0, 1}
	StatusDOS = Field{"DOS", 1, 1}
	StatusTBS = Field{"TBS", 2, 1}
	StatusTCS = Field{"TCS", 3, 1}
	StatusRS  = Field{"RS", 4, 1}
	StatusTS  = Field{"TS", 5, 1}
	StatusES  = Field{"ES", 6, 1}
	StatusBS  = Field{"BS", 7, 1}

	BTR0BRP = Field{"BRP", 0, 13}
	BTR0SJW = Field{"SJW", 14, 2}

	BTR1TSEG1 = Field{"TSEG1", 0, 4}
	BTR1TSEG2 = Field{"TSEG2", 4, 3}
	BTR1SAM   = Field{"SAM", 7, 1}

	OCRMode  = Field{"OCMODE", 0, 2}
	OCRPol0  = Field{"OCPOL0", 2, 1}
	OCRTN0   = Field{"OCTN0", 3, 1}
	OCRTP0   = Field{"OCTP0", 4, 1}
	OCRPol1  = Field{"OCPOL1", 5, 1}
	OCRTN1   = Field{"OCTN1", 6, 1}
	OCRTP1   = Field{"OCTP1", 7, 1}
	CDRCOD   = Field{"COD", 0, 8}
	CDRCOFF  = Field{"COFF", 8, 1}
	FIRDLC   = Field{"DLC", 0, 4}
	FIRUnk   = Field{"UNKNOWN", 4, 2}
	FIRRTR   = Field{"RTR", 6, 1}
	FIRFF    = Field{"FF", 7, 1}
	ByteLow8 = Field{"VALUE", 0, 8}
)

func interruptLayout(name, suffix string) Layout {
	return Layout{Name: name, Fields: []Field{
		{"RI" + suffix, 0, 1},
		{"TI" + suffix, 1, 1},
		{"EI" + suffix, 2, 1},
		{"DOI" + suffix, 3, 1},
		reserved(4, 1),
		{"EPI" + suffix, 5, 1},
		{"ALI" + suffix, 6, 1},
		{"BEI" + suffix, 7, 1},
		{"MSI" + suffix, 8, 1},
		reserved(9, 23),
	}}
}

func byteLayout(name string) Layout {
	return Layout{Name: name, Fields: []Field{ByteLow8, reserved(8, 24)}}
}

var (
	ModeLayout    = Layout{"MOD", []Field{ModeRM, ModeLOM, ModeSTM, ModeAFM, ModeSM, reserved(5, 27)}}
	CommandLayout = Layout{"CMR", []Field{CmdTR, CmdAT, CmdRRB, CmdCDO, CmdGTS, reserved(5, 27)}}
	StatusLayout  = Layout{"SR", []Field{
		StatusRBS, StatusDOS, StatusTBS, StatusTCS, StatusRS, StatusTS, StatusES, StatusBS, reserved(8, 24),
	}}
	InterruptLayout       = interruptLayout("IR", "")
	InterruptEnableLayout = interruptLayout("IER", "E")
	BTR0Layout            = Layout{"BTR0", []Field{BTR0BRP, reserved(13, 1), BTR0SJW, reserved(16, 16)}}
	BTR1Layout            = Layout{"BTR1", []Field{BTR1TSEG1, BTR1TSEG2, BTR1SAM, reserved(8, 24)}}
	OCRLayout             = Layout{"OCR", []Field{OCRMode, OCRPol0, OCRTN0, OCRTP0, OCRPol1, OCRTN1, OCRTP1, reserved(8, 24)}}
	CDRLayout             = Layout{"CDR", []Field{CDRCOD, CDRCOFF, reserved(9, 23)}}
	FIRLayout             = Layout{"FIR", []Field{FIRDLC, FIRUnk, FIRRTR, FIRFF, reserved(8, 24)}}
)

func flag(f Field, w uint32) bool { return f.Get(w) != 0 }

func put(f Field, w uint32, on bool) uint32 {
	if on {
		return f.Put(w, 1)
	}
	return f.Put(w, 0)
}

// Mode is a MOD word.
type Mode uint32

func (m Mode) ResetMode() bool    { return flag(ModeRM, uint32(m)) }
func (m Mode) ListenOnly() bool   { return flag(ModeLOM, uint32(m)) }
func (m Mode) SelfTest() bool     { return flag(ModeSTM, uint32(m)) }
func (m Mode) SingleFilter() bool { return flag(ModeAFM, uint32(m)) }
func (m Mode) Sleep() bool        { return flag(ModeSM, uint32(m)) }

// WithResetMode returns m with RM changed; other bits are kept.
func (m Mode) WithResetMode(on bool) Mode { return Mode(put(ModeRM, uint32(m), on)) }

func (m Mode) WithListenOnly(on bool) Mode { return Mode(put(ModeLOM, uint32(m), on)) }

func (m Mode) WithSelfTest(on bool) Mode { return Mode(put(ModeSTM, uint32(m), on)) }

func (m Mode) WithSingleFilter(on bool) Mode { return Mode(put(ModeAFM, uint32(m), on)) }

// Status is an SR word.
type Status uint32

func (s Status) RxBufferFull() bool { return flag(StatusRBS, uint32(s)) }
func (s Status) DataOverrun() bool  { return flag(StatusDOS, uint32(s)) }
func (s Status) TxBufferFree() bool { return flag(StatusTBS, uint32(s)) }
func (s Status) TxComplete() bool   { return flag(StatusTCS, uint32(s)) }
func (s Status) Receiving() bool    { return flag(StatusRS, uint32(s)) }
func (s Status) Transmitting() bool { return flag(StatusTS, uint32(s)) }
func (s Status) ErrorStatus() bool  { return flag(StatusES, uint32(s)) }
func (s Status) BusOff() bool       { return flag(StatusBS, uint32(s)) }

// BusTiming0 is a BTR0 word.
type BusTiming0 uint32

func (b BusTiming0) Prescaler() uint16 { return uint16(BTR0BRP.Get(uint32(b))) }
func (b BusTiming0) SyncJump() uint8   { return uint8(BTR0SJW.Get(uint32(b))) }

// NewBusTiming0 packs raw BRP and SJW register values.
func NewBusTiming0(brp uint16, sjw uint8) BusTiming0 {
	return BusTiming0(BTR0SJW.Put(BTR0BRP.Put(0, uint32(brp)), uint32(sjw)))
}

// BusTiming1 is a BTR1 word.
type BusTiming1 uint32

func (b BusTiming1) Seg1() uint8        { return uint8(BTR1TSEG1.Get(uint32(b))) }
func (b BusTiming1) Seg2() uint8        { return uint8(BTR1TSEG2.Get(uint32(b))) }
func (b BusTiming1) TripleSample() bool { return flag(BTR1SAM, uint32(b)) }

// NewBusTiming1 packs raw TSEG1, TSEG2 and SAM register values.
func NewBusTiming1(tseg1, tseg2 uint8, triple bool) BusTiming1 {
	w := BTR1TSEG2.Put(BTR1TSEG1.Put(0, uint32(tseg1)), uint32(tseg2))
	return BusTiming1(put(BTR1SAM, w, triple))
}

// OutputControl is an OCR word.
type OutputControl uint32

func (o OutputControl) Mode() OutputMode { return OutputMode(OCRMode.Get(uint32(o))) }

func (o OutputControl) WithMode(m OutputMode) OutputControl {
	return OutputControl(OCRMode.Put(uint32(o), uint32(m)))
}

func (o OutputControl) Polarity0() bool { return flag(OCRPol0, uint32(o)) }
func (o OutputControl) PullDown0() bool { return flag(OCRTN0, uint32(o)) }
func (o OutputControl) PullUp0() bool   { return flag(OCRTP0, uint32(o)) }
func (o OutputControl) Polarity1() bool { return flag(OCRPol1, uint32(o)) }
func (o OutputControl) PullDown1() bool { return flag(OCRTN1, uint32(o)) }
func (o OutputControl) PullUp1() bool   { return flag(OCRTP1, uint32(o)) }

// ClockDivider is a CDR word.
type ClockDivider uint32

func (c ClockDivider) Divider() uint8 { return uint8(CDRCOD.Get(uint32(c))) }
func (c ClockDivider) ClockOff() bool { return flag(CDRCOFF, uint32(c)) }

// Capture8 is any register whose only field is the low byte: ALC, ECC,
// EWLR, RXERR, TXERR, RMC and RBSA.
type Capture8 uint32

func (c Capture8) Value() uint8 { return uint8(ByteLow8.Get(uint32(c))) }

// LostBit is the ALC bit position at which arbitration was lost.
func (c Capture8) LostBit() uint8 { return c.Value() & 0x1F }

// ErrorCode is the decoded ECC byte.
type ErrorCode struct {
	Type    ErrorType
	Receive bool  // error occurred while receiving
	Segment uint8 // bit-stream position, SJA1000 segment code
}

// ErrorCode splits an ECC capture into its SJA1000 sub-fields.
func (c Capture8) ErrorCode() ErrorCode {
	v := c.Value()
	return ErrorCode{
		Type:    ErrorType(v >> 6),
		Receive: v&(1<<5) != 0,
		Segment: v & 0x1F,
	}
}

// FrameInfo is a frame information record (FIR) word.
type FrameInfo uint32

// NewFrameInfo packs a FIR. dlc is stored raw (low 4 bits); values above 8
// are legal register contents and are not clamped.
func NewFrameInfo(ff FrameFormat, rtr RTR, dlc uint8) FrameInfo {
	w := FIRDLC.Put(0, uint32(dlc))
	w = FIRRTR.Put(w, uint32(rtr))
	w = FIRFF.Put(w, uint32(ff))
	return FrameInfo(w)
}

func (f FrameInfo) DLC() uint8          { return uint8(FIRDLC.Get(uint32(f))) }
func (f FrameInfo) Unknown() uint8      { return uint8(FIRUnk.Get(uint32(f))) }
func (f FrameInfo) RTR() RTR            { return RTR(FIRRTR.Get(uint32(f))) }
func (f FrameInfo) Format() FrameFormat { return FrameFormat(FIRFF.Get(uint32(f))) }

// DataLen is the payload byte count implied by DLC, capped at 8.
func (f FrameInfo) DataLen() int {
	if n := int(f.DLC()); n < 8 {
		return n
	}
	return 8
}

func (f FrameInfo) WithDLC(dlc uint8) FrameInfo { return FrameInfo(FIRDLC.Put(uint32(f), uint32(dlc))) }

// WithUnknown sets the two undocumented FIR bits; they are passed through untouched otherwise.
func (f FrameInfo) WithUnknown(v uint8) FrameInfo { return FrameInfo(FIRUnk.Put(uint32(f), uint32(v))) }
