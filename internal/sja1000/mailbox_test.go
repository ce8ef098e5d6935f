package sja1000

import (
	"testing"

	"github.com/kstaniek/go-canregs/internal/can"
)

func TestFrameInfoPacking(t *testing.T) {
	fi := NewFrameInfo(Extended, RTRSet, 8)
	if uint32(fi)&0xFF != 0xC8 {
		t.Fatalf("FIR = %#x, want 0xC8", uint32(fi))
	}
	got := FrameInfo(0xC8)
	if got.DLC() != 8 || got.RTR() != RTRSet || got.Format() != Extended || got.Unknown() != 0 {
		t.Fatalf("unpack 0xC8: dlc=%d rtr=%v ff=%v", got.DLC(), got.RTR(), got.Format())
	}
	raw := NewFrameInfo(Standard, NoRTR, 15)
	if raw.DLC() != 15 || raw.DataLen() != 8 {
		t.Fatalf("raw DLC must be kept: dlc=%d len=%d", raw.DLC(), raw.DataLen())
	}
	if u := raw.WithUnknown(3); u.Unknown() != 3 || uint32(u) != 0x3F {
		t.Fatalf("unknown bits %#x", uint32(u))
	}
}

func TestOutputModeRoundTrip(t *testing.T) {
	for _, m := range []OutputMode{OutputBiPhase, OutputTest, OutputNormal, OutputClock} {
		w := OutputControl(0xFFFFFF00).WithMode(m)
		if w.Mode() != m || OutputMode(uint8(m)) != m {
			t.Fatalf("mode %v -> %v", m, w.Mode())
		}
		if uint32(w)&^0x3 != 0xFFFFFF00 {
			t.Fatalf("other OCR bits touched: %#x", uint32(w))
		}
	}
	names := map[OutputMode]string{0: "bi-phase", 1: "test", 2: "normal", 3: "clock", 7: "OutputMode(7)"}
	for m, want := range names {
		if m.String() != want {
			t.Fatalf("%d: %q", m, m.String())
		}
	}
}

func TestMailboxViewsAlias(t *testing.T) {
	mem := NewSim()
	mbx := New(mem).Mailbox()
	mbx.Filter().Store([4]uint8{0xC8, 1, 2, 3}, [4]uint8{0xFF, 0xFF, 0xFF, 0xFF})
	// Code byte 0 and the FIR are the same word.
	if fi := mbx.Frame().Info().Load(); fi.Format() != Extended || fi.DLC() != 8 {
		t.Fatalf("frame view does not alias filter view: %#x", uint32(fi))
	}
	if mem.Peek(OffMailbox+4*mbxMask) != 0xFF {
		t.Fatalf("mask 0 not at word 4")
	}
	code, mask := mbx.Filter().Load()
	if code != [4]uint8{0xC8, 1, 2, 3} || mask != [4]uint8{0xFF, 0xFF, 0xFF, 0xFF} {
		t.Fatalf("filter load % X / % X", code, mask)
	}
}

func TestFrameBufferStandard(t *testing.T) {
	mem := NewSim()
	fb := New(mem).Mailbox().Frame()
	f, _ := can.ParseFrame("7FF#0102030405060708")
	fb.Write(f)
	if mem.Peek(OffMailbox+4) != 0xFF || mem.Peek(OffMailbox+8) != 0xE0 {
		t.Fatalf("std lanes %#x %#x", mem.Peek(OffMailbox+4), mem.Peek(OffMailbox+8))
	}
	if mem.Peek(OffMailbox+4*mbxStdData) != 0x01 || mem.Peek(OffMailbox+4*(mbxStdData+7)) != 0x08 {
		t.Fatalf("std data misplaced")
	}
	if got := fb.Read(); got != f {
		t.Fatalf("read %v, want %v", got, f)
	}
}

func TestFrameBufferExtendedRemote(t *testing.T) {
	mem := NewSim()
	fb := New(mem).Mailbox().Frame()
	f, _ := can.ParseFrame("1FFFFFFF#R4")
	fb.Write(f)
	want := []uint32{0xC4, 0xFF, 0xFF, 0xFF, 0xF8}
	for i, w := range want {
		if got := mem.Peek(OffMailbox + uintptr(4*i)); got != w {
			t.Fatalf("word %d = %#x, want %#x", i, got, w)
		}
	}
	got := fb.Read()
	if !got.Extended() || !got.Remote() || got.ID() != 0x1FFFFFFF || got.Len != 4 {
		t.Fatalf("read %v", got)
	}
	if fb.ExtID() != 0x1FFFFFFF {
		t.Fatalf("ExtID %#x", fb.ExtID())
	}
}

func TestFrameBufferExtendedData(t *testing.T) {
	mem := NewSim()
	fb := New(mem).Mailbox().Frame()
	f, _ := can.ParseFrame("12345678#AABB")
	fb.Write(f)
	if fb.Data(Extended, 0) != 0xAA || mem.Peek(OffMailbox+4*(mbxExtData+1)) != 0xBB {
		t.Fatalf("ext data misplaced")
	}
	if got := fb.Read(); got != f {
		t.Fatalf("read %v, want %v", got, f)
	}
}

func TestFrameBufferPreservesPassthroughBits(t *testing.T) {
	mem := NewSim()
	fb := New(mem).Mailbox().Frame()
	mem.Poke(OffMailbox, 0xABCD0030) // reserved + unknown bits set
	mem.Poke(OffMailbox+4, 0x12345600)
	fb.Write(can.Frame{CANID: 0x123, Len: 0})
	if fi := mem.Peek(OffMailbox); fi != 0xABCD0030 {
		t.Fatalf("FIR %#x: passthrough bits lost", fi)
	}
	if w := mem.Peek(OffMailbox + 4); w != 0x12345624 {
		t.Fatalf("lane word %#x: reserved bits lost", w)
	}
}

func TestFrameBufferRawDLC(t *testing.T) {
	mem := NewSim()
	fb := New(mem).Mailbox().Frame()
	fb.Info().Store(NewFrameInfo(Standard, NoRTR, 12))
	for i := range 8 {
		fb.SetData(Standard, i, uint8(i+1))
	}
	got := fb.Read()
	if got.Len != 12 || len(got.Payload()) != 8 || got.Data[7] != 8 {
		t.Fatalf("read %v len=%d", got, got.Len)
	}
}

func TestMailboxIndexPanics(t *testing.T) {
	fb := New(NewSim()).Mailbox().Frame()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for data index 8")
		}
	}()
	fb.Data(Standard, 8)
}
