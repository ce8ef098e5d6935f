package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kstaniek/go-canregs/internal/can"
	"github.com/kstaniek/go-canregs/internal/sja1000"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	cfg, rest, showVersion, err := parseFlags(args)
	if showVersion {
		fmt.Fprintf(out, "canregs %s (commit %s, built %s)\n", version, commit, date)
		return 0
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "missing command: dump|get|set|tx|watch")
		return 2
	}
	l := setupLogger(cfg.logFormat, cfg.logLevel)

	bus, cleanup, err := openBus(cfg, l)
	if err != nil {
		l.Error("bus_open_error", "error", err)
		return 1
	}
	defer cleanup()
	ctrl := sja1000.New(bus)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := dispatch(ctx, cfg, ctrl, l, rest, out); err != nil {
		l.Error("command_error", "command", rest[0], "error", err)
		if errors.Is(err, ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, cfg *appConfig, ctrl *sja1000.Controller, l *slog.Logger, args []string, out io.Writer) error {
	cmd, operands := args[0], args[1:]
	need := func(n int) error {
		if len(operands) != n {
			return fmt.Errorf("%w: %s takes %d operand(s), got %d", ErrUsage, cmd, n, len(operands))
		}
		return nil
	}
	writes := cmd == "set" || cmd == "tx"
	if writes && cfg.readOnly {
		return fmt.Errorf("%w: %s needs a writable mapping (drop -read-only)", ErrUsage, cmd)
	}
	switch cmd {
	case "dump":
		if err := need(0); err != nil {
			return err
		}
		return dump(out, ctrl, cfg.captures)
	case "get":
		if err := need(1); err != nil {
			return err
		}
		return get(out, ctrl, operands[0], cfg.captures)
	case "set":
		if err := need(1); err != nil {
			return err
		}
		if err := set(ctrl, operands[0]); err != nil {
			return err
		}
		l.Info("register_set", "expr", operands[0])
		return nil
	case "tx":
		if err := need(1); err != nil {
			return err
		}
		f, err := can.ParseFrame(operands[0])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		if err := transmit(ctrl, f); err != nil {
			return err
		}
		l.Info("frame_staged", "frame", f.String())
		return nil
	case "watch":
		if err := need(0); err != nil {
			return err
		}
		return watch(ctx, cfg, ctrl, l)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}
