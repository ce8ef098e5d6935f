package sja1000

import "testing"

func TestStdID_Exhaustive(t *testing.T) {
	for id := uint32(0); id <= StdIDMask; id++ {
		if got := DecodeStdID(EncodeStdID(id)); got != id {
			t.Fatalf("std %#x: round trip %#x", id, got)
		}
	}
}

func TestExtID_RoundTrip(t *testing.T) {
	ids := []uint32{0, 1, ExtIDMask, 0x12345678 & ExtIDMask, 0x0AAAAAAA, 0x15555555}
	for b := 0; b < 29; b++ {
		ids = append(ids, 1<<b, ExtIDMask&^(1<<b))
	}
	for _, id := range ids {
		if got := DecodeExtID(EncodeExtID(id)); got != id {
			t.Fatalf("ext %#x: round trip %#x", id, got)
		}
	}
}

func TestExtID_Exhaustive(t *testing.T) {
	if testing.Short() {
		t.Skip("full 29-bit sweep")
	}
	for id := uint32(0); id <= ExtIDMask; id++ {
		if got := DecodeExtID(EncodeExtID(id)); got != id {
			t.Fatalf("ext %#x: round trip %#x", id, got)
		}
	}
}

func TestIDVectors(t *testing.T) {
	if l := EncodeStdID(0x7FF); l != [2]uint8{0xFF, 0xE0} {
		t.Fatalf("EncodeStdID(0x7FF) = % X", l)
	}
	if id := DecodeStdID([2]uint8{0xFF, 0xE0}); id != 0x7FF {
		t.Fatalf("DecodeStdID = %#x", id)
	}
	if l := EncodeExtID(0x1FFFFFFF); l != [4]uint8{0xFF, 0xFF, 0xFF, 0xF8} {
		t.Fatalf("EncodeExtID(0x1FFFFFFF) = % X", l)
	}
	if id := DecodeExtID([4]uint8{0xFF, 0xFF, 0xFF, 0xF8}); id != 0x1FFFFFFF {
		t.Fatalf("DecodeExtID = %#x", id)
	}
	// 0x123 = 001_0010_0011: lane0 = 0010_0100, lane1 = 011_00000
	if l := EncodeStdID(0x123); l != [2]uint8{0x24, 0x60} {
		t.Fatalf("EncodeStdID(0x123) = % X", l)
	}
}

func TestIDTruncation(t *testing.T) {
	if EncodeStdID(0xF800|0x155) != EncodeStdID(0x155) {
		t.Fatalf("std encode must drop bits above 11")
	}
	if EncodeExtID(0xE0000000|0x0ABCDEF) != EncodeExtID(0x0ABCDEF) {
		t.Fatalf("ext encode must drop bits above 29")
	}
	// Low lane bits below the identifier are ignored on decode.
	if id := DecodeStdID([2]uint8{0, 0x1F}); id != 0 {
		t.Fatalf("std decode picked up padding: %#x", id)
	}
	if id := DecodeExtID([4]uint8{0, 0, 0, 0x07}); id != 0 {
		t.Fatalf("ext decode picked up padding: %#x", id)
	}
}

func FuzzExtIDRoundTrip(f *testing.F) {
	f.Add(uint32(0))
	f.Add(uint32(0x1FFFFFFF))
	f.Add(uint32(0xFFFFFFFF))
	f.Fuzz(func(t *testing.T, id uint32) {
		if got := DecodeExtID(EncodeExtID(id)); got != id&ExtIDMask {
			t.Fatalf("ext %#x: got %#x", id, got)
		}
		if got := DecodeStdID(EncodeStdID(id)); got != id&StdIDMask {
			t.Fatalf("std %#x: got %#x", id, got)
		}
	})
}

func BenchmarkEncodeDecodeExt(b *testing.B) {
	var sink uint32
	for i := 0; i < b.N; i++ {
		sink ^= DecodeExtID(EncodeExtID(uint32(i)))
	}
	_ = sink
}
