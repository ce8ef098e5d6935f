package sja1000

// Identifier byte lanes. The controller left-aligns the identifier across
// the lanes, so the last lane carries the low bits in its upper part.
//
//	standard: lane0 = id[10:3], lane1[7:5] = id[2:0]
//	extended: lane0 = id[28:21], lane1 = id[20:13], lane2 = id[12:5], lane3[7:3] = id[4:0]
//
// Inputs wider than the identifier are truncated to its low bits.

const (
	StdIDMask uint32 = 0x7FF
	ExtIDMask uint32 = 0x1FFFFFFF
)

// EncodeStdID splits an 11-bit identifier into its two lanes.
func EncodeStdID(id uint32) [2]uint8 {
	return [2]uint8{
		uint8(id >> 3),
		uint8(id << 5),
	}
}

// DecodeStdID joins two lanes into an 11-bit identifier.
func DecodeStdID(l [2]uint8) uint32 {
	return uint32(l[0])<<3 | uint32(l[1])>>5
}

// EncodeExtID splits a 29-bit identifier into its four lanes.
func EncodeExtID(id uint32) [4]uint8 {
	return [4]uint8{
		uint8(id >> 21),
		uint8(id >> 13),
		uint8(id >> 5),
		uint8(id << 3),
	}
}

// DecodeExtID joins four lanes into a 29-bit identifier.
func DecodeExtID(l [4]uint8) uint32 {
	return uint32(l[0])<<21 | uint32(l[1])<<13 | uint32(l[2])<<5 | uint32(l[3])>>3
}
