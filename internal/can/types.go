package can

import "fmt"

// SocketCAN flag bits for can_id (same values as <linux/can.h>)
const (
	CAN_EFF_FLAG = 0x80000000
	CAN_RTR_FLAG = 0x40000000
	CAN_ERR_FLAG = 0x20000000
	CAN_SFF_MASK = 0x7FF
	CAN_EFF_MASK = 0x1FFFFFFF
)

// MaxDataLen is the classic CAN payload limit.
const MaxDataLen = 8

// Frame is a classic CAN frame in the caller's domain.
// CANID carries EFF/RTR flags in its upper bits like SocketCAN.
// Len is the raw data length code; only the first min(Len, 8) bytes of Data are valid.
type Frame struct {
	CANID uint32
	Len   uint8
	Data  [MaxDataLen]byte
}

// ID returns the identifier without flag bits, masked to 11 or 29 bits.
func (f Frame) ID() uint32 {
	if f.Extended() {
		return f.CANID & CAN_EFF_MASK
	}
	return f.CANID & CAN_SFF_MASK
}

func (f Frame) Extended() bool { return f.CANID&CAN_EFF_FLAG != 0 }

func (f Frame) Remote() bool { return f.CANID&CAN_RTR_FLAG != 0 }

// Payload returns the valid data bytes. Length codes above 8 are capped.
func (f Frame) Payload() []byte {
	n := int(f.Len)
	if n > MaxDataLen {
		n = MaxDataLen
	}
	return f.Data[:n]
}

// String renders the frame in cansend notation (123#DEADBEEF, 12345678#R).
func (f Frame) String() string {
	var id string
	if f.Extended() {
		id = fmt.Sprintf("%08X", f.ID())
	} else {
		id = fmt.Sprintf("%03X", f.ID())
	}
	if f.Remote() {
		if f.Len == 0 {
			return id + "#R"
		}
		return fmt.Sprintf("%s#R%d", id, f.Len)
	}
	return fmt.Sprintf("%s#%X", id, f.Payload())
}
