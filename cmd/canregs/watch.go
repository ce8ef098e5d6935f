package main

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/kstaniek/go-canregs/internal/metrics"
	"github.com/kstaniek/go-canregs/internal/monitor"
	"github.com/kstaniek/go-canregs/internal/sja1000"
)

// watch samples the controller until ctx is cancelled, serving metrics and
// advertising them when configured.
func watch(ctx context.Context, cfg *appConfig, c *sja1000.Controller, l *slog.Logger) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	startMetricsLogger(ctx, cfg.logMetricsEvery, l, &wg)

	var sampled atomic.Bool
	metrics.SetReadinessFunc(func() bool { return sampled.Load() && ctx.Err() == nil })
	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo(version, commit, date)
		srv := metrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = srv.Shutdown(context.Background()) }()

		if cfg.mdnsEnable {
			cleanupMDNS, err := startMDNS(ctx, cfg, portOf(cfg.metricsAddr))
			if err != nil {
				metrics.IncError(metrics.ErrMDNS)
				l.Warn("mdns_start_failed", "error", err)
			} else {
				l.Info("mdns_started", "service", mdnsServiceType, "name", cfg.mdnsName)
				defer cleanupMDNS()
			}
		}
	}

	s := monitor.New(c,
		monitor.WithInterval(cfg.interval),
		monitor.WithCaptures(cfg.captures),
		monitor.WithLogger(l),
		monitor.WithOnSample(func(monitor.Snapshot) { sampled.Store(true) }),
	)
	speed := "unknown"
	if cfg.busSpeed.Valid() {
		speed = cfg.busSpeed.String()
	}
	l.Info("watch_started", "interval", cfg.interval, "captures", cfg.captures, "speed", speed)
	return s.Run(ctx)
}

// portOf extracts the port from host:port or :port; 0 when unparsable.
func portOf(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0
	}
	return n
}
