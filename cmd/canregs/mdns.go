package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/grandcat/zeroconf"
)

const mdnsServiceType = "_canregs._tcp"

// startMDNS advertises the metrics endpoint via mDNS and returns a cleanup function.
// It is safe to call even if disabled (no-op).
func startMDNS(ctx context.Context, cfg *appConfig, port int) (func(), error) {
	if !cfg.mdnsEnable {
		return func() {}, nil
	}
	instance := cfg.mdnsName
	if instance == "" {
		host, _ := os.Hostname()
		instance = fmt.Sprintf("canregs-%s", host)
	}
	svc, err := zeroconf.Register(instance, mdnsServiceType, "local.", port, mdnsMeta(cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("mdns register: %w", err)
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		svc.Shutdown()
	}()
	return func() { close(done); time.Sleep(50 * time.Millisecond) }, nil
}

// mdnsMeta builds the TXT records advertised with the metrics endpoint.
func mdnsMeta(cfg *appConfig) []string {
	meta := []string{
		"path=/metrics",
		fmt.Sprintf("base=%#x", cfg.base),
		"version=" + version,
		"commit=" + commit,
	}
	if cfg.busSpeed.Valid() {
		meta = append(meta, fmt.Sprintf("bitrate=%d", cfg.busSpeed.BitRate()))
	}
	return meta
}
