package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kstaniek/go-canregs/internal/sja1000"
)

// dump prints every readable register with its decoded fields, then the
// mailbox in the interpretation selected by MOD.RM.
func dump(out io.Writer, c *sja1000.Controller, captures bool) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REG\tOFF\tACC\tVALUE\tFIELDS")
	for _, r := range sja1000.Registers() {
		if r.Offset == sja1000.OffMailbox {
			continue // decoded with the mailbox below
		}
		switch {
		case r.Access&sja1000.Readable == 0:
			fmt.Fprintf(tw, "%s\t%#02x\t%s\t-\t(write-only)\n", r.Name, r.Offset, r.Access)
			continue
		case r.Access&sja1000.ReadSideEffect != 0 && !captures:
			fmt.Fprintf(tw, "%s\t%#02x\t%s\t-\t(read clears; use -captures)\n", r.Name, r.Offset, r.Access)
			continue
		}
		v, err := c.Load(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%#02x\t%s\t%#08x\t%s\n", r.Name, r.Offset, r.Access, v, formatFields(r.Layout, v))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	view := c.ActiveMailbox()
	fmt.Fprintf(out, "\nmailbox (%s):\n", view)
	mbx := c.Mailbox()
	switch view {
	case sja1000.ViewFilter:
		code, mask := mbx.Filter().Load()
		fmt.Fprintf(out, "  code % X\n  mask % X\n", code[:], mask[:])
	default:
		fir := mbx.Frame().Info().Load()
		fmt.Fprintf(out, "  FIR %#02x  format=%s rtr=%s dlc=%d unknown=%d\n",
			uint32(fir), fir.Format(), fir.RTR(), fir.DLC(), fir.Unknown())
		fmt.Fprintf(out, "  frame %s\n", mbx.Frame().Read())
	}
	return nil
}

func formatFields(l sja1000.Layout, v uint32) string {
	named := l.Named()
	parts := make([]string, 0, len(named))
	for _, f := range named {
		parts = append(parts, fmt.Sprintf("%s=%d", f.Name, f.Get(v)))
	}
	return strings.Join(parts, " ")
}
