package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kstaniek/go-canregs/internal/mmio"
	"github.com/kstaniek/go-canregs/internal/sja1000"
)

type appConfig struct {
	device          string
	base            uintptr
	sim             bool
	readOnly        bool
	trace           bool
	captures        bool
	logFormat       string
	logLevel        string
	metricsAddr     string
	interval        time.Duration
	logMetricsEvery time.Duration
	mdnsEnable      bool
	mdnsName        string
	speed           string        // nominal bus rate label, e.g. "500k"
	busSpeed        sja1000.Speed // parsed from speed by validate; 0 when unset
}

// parseFlags parses global flags and returns the config, the remaining
// arguments (command and its operands) and whether -version was given.
func parseFlags(args []string) (*appConfig, []string, bool, error) {
	fs := flag.NewFlagSet("canregs", flag.ContinueOnError)
	cfg := &appConfig{}
	device := fs.String("device", mmio.DefaultDevice, "Physical memory device")
	base := fs.String("base", fmt.Sprintf("%#x", sja1000.BaseAddress), "Physical base address of the CAN register block")
	sim := fs.Bool("sim", false, "Use an in-process simulated register block instead of the device")
	readOnly := fs.Bool("read-only", false, "Map the register block read-only (dump/get/watch only)")
	trace := fs.Bool("trace", false, "Log every register access at debug level")
	captures := fs.Bool("captures", false, "Also read IR/ALC/ECC (clears interrupt flags and captures)")
	logFormat := fs.String("log-format", "text", "Log format: text|json")
	logLevel := fs.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := fs.String("metrics-addr", "", "Metrics HTTP listen address for watch (e.g., :9101); empty disables")
	interval := fs.Duration("interval", time.Second, "Sampling interval for watch")
	logMetricsEvery := fs.Duration("log-metrics-interval", 0, "If >0, periodically log metrics counters (for non-Prometheus setups)")
	mdnsEnable := fs.Bool("mdns-enable", false, "Advertise the metrics endpoint via mDNS while watching")
	mdnsName := fs.String("mdns-name", "", "mDNS instance name (default canregs-<hostname>)")
	speed := fs.String("speed", "", "Nominal bus rate of the attached bus (100k..1M), reported in watch logs and mDNS")
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: canregs [flags] dump|get REG[.FIELD]|set REG[.FIELD]=VALUE|tx ID#DATA|watch\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, false, err
	}

	// Track which flags were explicitly set to give them precedence over env.
	setFlags := map[string]struct{}{}
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })
	b, err := parseAddr(*base)
	if err != nil {
		return nil, nil, *showVersion, fmt.Errorf("invalid base: %w", err)
	}
	cfg.device = *device
	cfg.base = b
	cfg.sim = *sim
	cfg.readOnly = *readOnly
	cfg.trace = *trace
	cfg.captures = *captures
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.interval = *interval
	cfg.logMetricsEvery = *logMetricsEvery
	cfg.mdnsEnable = *mdnsEnable
	cfg.mdnsName = *mdnsName
	cfg.speed = *speed

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		return nil, nil, *showVersion, fmt.Errorf("environment override error: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, *showVersion, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, fs.Args(), *showVersion, nil
}

func parseAddr(s string) (uintptr, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, err
	}
	return uintptr(n), nil
}

// validate performs basic semantic validation of the parsed configuration.
// It does not attempt to open devices or listeners – only checks values/ranges.
func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	if !c.sim {
		if c.device == "" {
			return errors.New("device must be set unless -sim")
		}
		if c.base%4 != 0 {
			return fmt.Errorf("base %#x must be word aligned", c.base)
		}
	}
	if c.interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	if c.logMetricsEvery < 0 {
		return fmt.Errorf("log-metrics-interval must be >= 0")
	}
	if c.mdnsEnable && c.metricsAddr == "" {
		return errors.New("mdns-enable requires metrics-addr")
	}
	c.busSpeed = 0
	if c.speed != "" {
		sp, err := sja1000.ParseSpeed(c.speed)
		if err != nil {
			return fmt.Errorf("invalid speed: %w", err)
		}
		c.busSpeed = sp
	}
	return nil
}

// applyEnvOverrides maps CANREGS_* environment variables to config fields
// unless a corresponding flag was explicitly set. Boolean & numeric parsing is lax:
// empty values ignored. Duration accepts Go time.ParseDuration format.
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }
	str := func(flagName, env string, dst *string) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(flagName, env string, dst *bool) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}
	duration := func(flagName, env string, dst *time.Duration, allowZero bool) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err == nil && (d > 0 || allowZero && d == 0) {
				*dst = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid %s: %w", env, err)
			}
		}
	}

	str("device", "CANREGS_DEVICE", &c.device)
	if _, ok := set["base"]; !ok {
		if v, ok := get("CANREGS_BASE"); ok && v != "" {
			if b, err := parseAddr(v); err == nil {
				c.base = b
			} else if firstErr == nil {
				firstErr = fmt.Errorf("invalid CANREGS_BASE: %w", err)
			}
		}
	}
	boolean("sim", "CANREGS_SIM", &c.sim)
	boolean("read-only", "CANREGS_READ_ONLY", &c.readOnly)
	boolean("trace", "CANREGS_TRACE", &c.trace)
	boolean("captures", "CANREGS_CAPTURES", &c.captures)
	str("log-format", "CANREGS_LOG_FORMAT", &c.logFormat)
	str("log-level", "CANREGS_LOG_LEVEL", &c.logLevel)
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("CANREGS_METRICS"); ok {
			c.metricsAddr = v
		}
	}
	duration("interval", "CANREGS_INTERVAL", &c.interval, false)
	duration("log-metrics-interval", "CANREGS_LOG_METRICS_INTERVAL", &c.logMetricsEvery, true)
	boolean("mdns-enable", "CANREGS_MDNS_ENABLE", &c.mdnsEnable)
	str("mdns-name", "CANREGS_MDNS_NAME", &c.mdnsName)
	str("speed", "CANREGS_SPEED", &c.speed)
	return firstErr
}
