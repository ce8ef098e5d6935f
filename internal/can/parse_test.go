package can

import (
	"errors"
	"testing"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		in       string
		id       uint32
		extended bool
		remote   bool
		data     string
		len      uint8
	}{
		{"123#DEADBEEF", 0x123, false, false, "\xDE\xAD\xBE\xEF", 4},
		{"7FF#", 0x7FF, false, false, "", 0},
		{"1FFFFFFF#00.11.22", 0x1FFFFFFF, true, false, "\x00\x11\x22", 3},
		{"00000001#R", 0x1, true, true, "", 0},
		{"456#R8", 0x456, false, true, "", 8},
	}
	for _, tc := range tests {
		f, err := ParseFrame(tc.in)
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.in, err)
		}
		if f.ID() != tc.id || f.Extended() != tc.extended || f.Remote() != tc.remote {
			t.Fatalf("%s: got id=%X ext=%v rtr=%v", tc.in, f.ID(), f.Extended(), f.Remote())
		}
		if f.Len != tc.len {
			t.Fatalf("%s: len %d, want %d", tc.in, f.Len, tc.len)
		}
		if !tc.remote && string(f.Payload()) != tc.data {
			t.Fatalf("%s: data %X", tc.in, f.Payload())
		}
	}
}

func TestParseFrame_Errors(t *testing.T) {
	for _, in := range []string{
		"123",
		"12#00",
		"800#00",
		"20000000#00",
		"123#0011223344556677889",
		"123#001122334455667788",
		"123#R9",
		"XYZ#00",
	} {
		if _, err := ParseFrame(in); !errors.Is(err, ErrSyntax) {
			t.Fatalf("%q: expected ErrSyntax, got %v", in, err)
		}
	}
}

func TestFrameString_RoundTrip(t *testing.T) {
	for _, in := range []string{"123#DEADBEEF", "1ABCDEF0#R", "000#", "7FF#R3"} {
		f, err := ParseFrame(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got := f.String(); got != in {
			t.Fatalf("String() = %q, want %q", got, in)
		}
	}
}

func TestPayloadCapsLength(t *testing.T) {
	f := Frame{Len: 15}
	if n := len(f.Payload()); n != MaxDataLen {
		t.Fatalf("payload len %d, want %d", n, MaxDataLen)
	}
	// Payload works on values that are not addressable, like map entries.
	frames := map[string]Frame{"a": {CANID: 0x10, Len: 2, Data: [8]byte{0xAA, 0xBB}}}
	if p := frames["a"].Payload(); len(p) != 2 || p[1] != 0xBB {
		t.Fatalf("payload % X", p)
	}
}

func FuzzParseFrame(f *testing.F) {
	f.Add("123#DEADBEEF")
	f.Add("1FFFFFFF#R8")
	f.Fuzz(func(t *testing.T, s string) {
		fr, err := ParseFrame(s)
		if err != nil {
			return
		}
		if len(fr.Payload()) > MaxDataLen {
			t.Fatalf("payload overflow for %q", s)
		}
	})
}
