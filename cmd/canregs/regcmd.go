package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kstaniek/go-canregs/internal/can"
	"github.com/kstaniek/go-canregs/internal/sja1000"
)

var (
	ErrUsage      = errors.New("usage")
	ErrResetMode  = errors.New("controller is in reset mode")
	ErrTxBusy     = errors.New("transmit buffer locked")
	ErrSideEffect = errors.New("read has side effects")
)

// get prints a register word or one field. Registers whose read changes
// hardware state need captures.
func get(out io.Writer, c *sja1000.Controller, path string, captures bool) error {
	r, f, hasField, err := sja1000.LookupField(path)
	if err != nil {
		return err
	}
	if r.Access&sja1000.ReadSideEffect != 0 && !captures {
		return fmt.Errorf("%s: %w (use -captures)", r.Name, ErrSideEffect)
	}
	v, err := c.Load(r)
	if err != nil {
		return err
	}
	if hasField {
		fmt.Fprintf(out, "%s.%s=%d\n", r.Name, f.Name, f.Get(v))
		return nil
	}
	fmt.Fprintf(out, "%s=%#08x %s\n", r.Name, v, formatFields(r.Layout, v))
	return nil
}

// set applies REG=VALUE (whole word) or REG.FIELD=VALUE (single field).
func set(c *sja1000.Controller, expr string) error {
	path, raw, ok := strings.Cut(expr, "=")
	if !ok {
		return fmt.Errorf("%w: set expects REG[.FIELD]=VALUE, got %q", ErrUsage, expr)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 0, 32)
	if err != nil {
		return fmt.Errorf("%w: value %q: %v", ErrUsage, raw, err)
	}
	r, f, hasField, err := sja1000.LookupField(strings.TrimSpace(path))
	if err != nil {
		return err
	}
	if hasField {
		return c.SetField(r, f, uint32(v))
	}
	return c.Store(r, uint32(v))
}

// transmit stages f in the frame buffer and requests transmission.
func transmit(c *sja1000.Controller, f can.Frame) error {
	if c.ActiveMailbox() != sja1000.ViewFrame {
		return fmt.Errorf("tx: %w; mailbox holds the acceptance filter", ErrResetMode)
	}
	if !c.SR.Load().TxBufferFree() {
		return fmt.Errorf("tx: %w", ErrTxBusy)
	}
	c.Mailbox().Frame().Write(f)
	c.CMR.Issue(sja1000.CmdTransmit)
	return nil
}
