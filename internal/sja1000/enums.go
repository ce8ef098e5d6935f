package sja1000

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Speed names a nominal bus rate in kbit/s. It carries no prescaler or
// segment encoding; BTR0/BTR1 values are derived elsewhere.
type Speed uint16

const (
	Speed100K  Speed = 100
	Speed125K  Speed = 125
	Speed250K  Speed = 250
	Speed500K  Speed = 500
	Speed800K  Speed = 800
	Speed1000K Speed = 1000
)

// Speeds lists every supported rate in ascending order.
var Speeds = []Speed{Speed100K, Speed125K, Speed250K, Speed500K, Speed800K, Speed1000K}

// BitRate returns the rate in bit/s.
func (s Speed) BitRate() int { return int(s) * 1000 }

func (s Speed) Valid() bool {
	for _, v := range Speeds {
		if v == s {
			return true
		}
	}
	return false
}

func (s Speed) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Speed(%d)", uint16(s))
	}
	return strconv.Itoa(int(s)) + "kbit/s"
}

// ParseSpeed accepts "500", "500k", "500kbit/s" or "1M".
func ParseSpeed(s string) (Speed, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSuffix(v, "bit/s")
	mult := 1
	switch {
	case strings.HasSuffix(v, "k"):
		v = strings.TrimSuffix(v, "k")
	case strings.HasSuffix(v, "m"):
		v = strings.TrimSuffix(v, "m")
		mult = 1000
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("speed %q: %w", s, err)
	}
	if n <= 0 || n > math.MaxUint16/mult {
		return 0, fmt.Errorf("speed %q: unsupported rate", s)
	}
	sp := Speed(n * mult)
	if !sp.Valid() {
		return 0, fmt.Errorf("speed %q: unsupported rate", s)
	}
	return sp, nil
}

// FrameFormat is the FIR.FF flag.
type FrameFormat uint8

const (
	Standard FrameFormat = 0 // 11-bit identifier
	Extended FrameFormat = 1 // 29-bit identifier
)

func (f FrameFormat) String() string {
	switch f {
	case Standard:
		return "standard"
	case Extended:
		return "extended"
	default:
		return fmt.Sprintf("FrameFormat(%d)", uint8(f))
	}
}

// RTR is the FIR.RTR flag.
type RTR uint8

const (
	NoRTR  RTR = 0
	RTRSet RTR = 1
)

func (r RTR) String() string {
	switch r {
	case NoRTR:
		return "data"
	case RTRSet:
		return "remote"
	default:
		return fmt.Sprintf("RTR(%d)", uint8(r))
	}
}

// OutputMode is OCR.OCMODE.
type OutputMode uint8

const (
	OutputBiPhase OutputMode = 0b00
	OutputTest    OutputMode = 0b01
	OutputNormal  OutputMode = 0b10
	OutputClock   OutputMode = 0b11
)

func (m OutputMode) String() string {
	switch m {
	case OutputBiPhase:
		return "bi-phase"
	case OutputTest:
		return "test"
	case OutputNormal:
		return "normal"
	case OutputClock:
		return "clock"
	default:
		return fmt.Sprintf("OutputMode(%d)", uint8(m))
	}
}

// Interrupt is the IR/IER bitmask. The same bit positions are used for the
// pending flags and the enable mask.
type Interrupt uint32

const (
	IntRX          Interrupt = 1 << 0
	IntTX          Interrupt = 1 << 1
	IntError       Interrupt = 1 << 2
	IntDataOverrun Interrupt = 1 << 3
	IntReserved    Interrupt = 1 << 4 // wake-up, not supported
	IntErrPassive  Interrupt = 1 << 5
	IntArbLost     Interrupt = 1 << 6
	IntBusError    Interrupt = 1 << 7
	IntMissError   Interrupt = 1 << 8

	// IntAll covers every defined source except the reserved bit.
	IntAll = IntRX | IntTX | IntError | IntDataOverrun | IntErrPassive | IntArbLost | IntBusError | IntMissError
)

var interruptNames = []struct {
	bit  Interrupt
	name string
}{
	{IntRX, "rx"},
	{IntTX, "tx"},
	{IntError, "error"},
	{IntDataOverrun, "data_overrun"},
	{IntReserved, "reserved"},
	{IntErrPassive, "error_passive"},
	{IntArbLost, "arbitration_lost"},
	{IntBusError, "bus_error"},
	{IntMissError, "miss_error"},
}

// Has reports whether all bits of mask are set.
func (i Interrupt) Has(mask Interrupt) bool { return i&mask == mask }

// Sources splits the mask into its defined single-bit sources.
func (i Interrupt) Sources() []Interrupt {
	var out []Interrupt
	for _, n := range interruptNames {
		if i&n.bit != 0 {
			out = append(out, n.bit)
		}
	}
	return out
}

// Name returns the label of a single-bit source, or "" for anything else.
func (i Interrupt) Name() string {
	for _, n := range interruptNames {
		if n.bit == i {
			return n.name
		}
	}
	return ""
}

func (i Interrupt) String() string {
	var parts []string
	rest := i
	for _, n := range interruptNames {
		if i&n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Command is a CMR value. Each bit requests one action; the hardware
// clears it on its own.
type Command uint32

const (
	CmdTransmit     Command = 1 << 0 // TR
	CmdAbort        Command = 1 << 1 // AT
	CmdReleaseRx    Command = 1 << 2 // RRB
	CmdClearOverrun Command = 1 << 3 // CDO
	CmdSleep        Command = 1 << 4 // GTS
)

func (c Command) String() string {
	names := []string{"transmit", "abort", "release_rx", "clear_overrun", "sleep"}
	var parts []string
	for i, n := range names {
		if c&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	if rest := c &^ 0x1F; rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ErrorType is the ECC error-code class.
type ErrorType uint8

const (
	ErrBit   ErrorType = 0
	ErrForm  ErrorType = 1
	ErrStuff ErrorType = 2
	ErrOther ErrorType = 3
)

func (e ErrorType) String() string {
	switch e {
	case ErrBit:
		return "bit"
	case ErrForm:
		return "form"
	case ErrStuff:
		return "stuff"
	case ErrOther:
		return "other"
	default:
		return fmt.Sprintf("ErrorType(%d)", uint8(e))
	}
}
