package sja1000

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used for wrapping so callers can classify via errors.Is.
var (
	ErrUnknownRegister = errors.New("unknown register")
	ErrUnknownField    = errors.New("unknown field")
	ErrReadOnly        = errors.New("register is read-only")
	ErrWriteOnly       = errors.New("register is write-only")
)

// Lookup finds a register by name, case-insensitively.
func Lookup(name string) (Register, error) {
	for _, r := range registers {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return Register{}, fmt.Errorf("%q: %w", name, ErrUnknownRegister)
}

// LookupField resolves "REG" or "REG.FIELD". ok is false when only a
// register was named.
func LookupField(path string) (r Register, f Field, ok bool, err error) {
	regName, fieldName, hasField := strings.Cut(path, ".")
	r, err = Lookup(regName)
	if err != nil || !hasField {
		return r, Field{}, false, err
	}
	f, found := r.Layout.Field(fieldName)
	if !found {
		return r, Field{}, false, fmt.Errorf("%s.%s: %w", r.Name, fieldName, ErrUnknownField)
	}
	return r, f, true, nil
}
