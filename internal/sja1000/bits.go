package sja1000

import (
	"fmt"
	"strings"
)

// Field is a contiguous bit range inside a 32-bit register word.
type Field struct {
	Name  string
	Shift uint
	Width uint
}

// reserved builds an anonymous padding field; its bits are never touched by
// named-field writes.
func reserved(shift, width uint) Field {
	return Field{Name: fmt.Sprintf("reserved_%d", shift), Shift: shift, Width: width}
}

// Reserved reports whether f is padding rather than a named field.
func (f Field) Reserved() bool { return strings.HasPrefix(f.Name, "reserved_") }

// Mask returns the in-place mask of the field.
func (f Field) Mask() uint32 {
	if f.Width >= 32 {
		return ^uint32(0) << f.Shift
	}
	return (uint32(1)<<f.Width - 1) << f.Shift
}

// Get extracts the field from word.
func (f Field) Get(word uint32) uint32 { return (word & f.Mask()) >> f.Shift }

// Put returns word with the field replaced by v. Bits of v above Width are dropped.
func (f Field) Put(word, v uint32) uint32 {
	return word&^f.Mask() | (v<<f.Shift)&f.Mask()
}

// Layout is the full bit map of one register word, padding included.
type Layout struct {
	Name   string
	Fields []Field
}

// Check verifies that the fields tile bits 0..31 with no gap and no overlap.
func (l Layout) Check() error {
	var seen uint32
	var total uint
	for _, f := range l.Fields {
		if f.Width == 0 || f.Shift+f.Width > 32 {
			return fmt.Errorf("%s.%s: bits [%d+%d] outside word", l.Name, f.Name, f.Shift, f.Width)
		}
		if seen&f.Mask() != 0 {
			return fmt.Errorf("%s.%s: overlaps mask %#08x", l.Name, f.Name, seen&f.Mask())
		}
		seen |= f.Mask()
		total += f.Width
	}
	if total != 32 || seen != ^uint32(0) {
		return fmt.Errorf("%s: fields cover %d bits (mask %#08x), want 32", l.Name, total, seen)
	}
	return nil
}

// Field looks up a named (non-reserved) field, case-insensitively.
func (l Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if !f.Reserved() && strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Named returns the non-reserved fields in bit order.
func (l Layout) Named() []Field {
	out := make([]Field, 0, len(l.Fields))
	for _, f := range l.Fields {
		if !f.Reserved() {
			out = append(out, f)
		}
	}
	return out
}
