// Package monitor samples controller registers on a fixed interval and
// publishes them as metrics and log events. It never writes a register.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/kstaniek/go-canregs/internal/logging"
	"github.com/kstaniek/go-canregs/internal/metrics"
	"github.com/kstaniek/go-canregs/internal/sja1000"
)

// ErrorPassiveLimit is the error count at which a node turns error passive.
const ErrorPassiveLimit = 128

const defaultInterval = time.Second

// Snapshot is one sampling pass.
type Snapshot struct {
	Time       time.Time
	Mode       sja1000.Mode
	Status     sja1000.Status
	RxErr      uint8
	TxErr      uint8
	WarnLimit  uint8
	RxMessages uint8

	// Set only when captures are enabled.
	Interrupts sja1000.Interrupt
	LostBit    uint8
	ErrorCode  sja1000.ErrorCode
}

// ErrorPassive reports whether either error counter reached the passive limit.
func (s Snapshot) ErrorPassive() bool {
	return s.RxErr >= ErrorPassiveLimit || s.TxErr >= ErrorPassiveLimit
}

// Sampler polls a Controller.
type Sampler struct {
	ctrl     *sja1000.Controller
	interval time.Duration
	captures bool
	logger   *slog.Logger
	onSample func(Snapshot)

	prev    Snapshot
	hasPrev bool
}

type Option func(*Sampler)

func WithInterval(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithCaptures enables reading IR and, when flagged, ALC and ECC. Those reads
// clear the interrupt flags and re-arm the captures, so enable it only when
// no driver is consuming interrupts.
func WithCaptures(on bool) Option { return func(s *Sampler) { s.captures = on } }

func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnSample registers a callback invoked after every sample.
func WithOnSample(fn func(Snapshot)) Option { return func(s *Sampler) { s.onSample = fn } }

func New(ctrl *sja1000.Controller, opts ...Option) *Sampler {
	s := &Sampler{ctrl: ctrl, interval: defaultInterval, logger: logging.L()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Sample reads the registers once, publishes metrics and logs transitions.
func (s *Sampler) Sample() Snapshot {
	c := s.ctrl
	snap := Snapshot{
		Time:       time.Now(),
		Mode:       c.MOD.Load(),
		Status:     c.SR.Load(),
		RxErr:      c.RXERR.Load().Value(),
		TxErr:      c.TXERR.Load().Value(),
		WarnLimit:  c.EWLR.Load().Value(),
		RxMessages: c.RMC.Load().Value(),
	}
	if s.captures {
		snap.Interrupts = c.IR.Load()
		if snap.Interrupts.Has(sja1000.IntArbLost) {
			snap.LostBit = c.ALC.Load().LostBit()
		}
		if snap.Interrupts.Has(sja1000.IntBusError) {
			snap.ErrorCode = c.ECC.Load().ErrorCode()
		}
	}
	s.publish(snap)
	s.logTransitions(snap)
	s.prev, s.hasPrev = snap, true
	return snap
}

func (s *Sampler) publish(snap Snapshot) {
	metrics.IncSamples()
	metrics.SetErrorCounters(snap.RxErr, snap.TxErr, snap.WarnLimit)
	metrics.SetRxMessages(snap.RxMessages)
	metrics.SetResetMode(snap.Mode.ResetMode())
	st := snap.Status
	for _, b := range []struct {
		name string
		on   bool
	}{
		{"rx_buffer_full", st.RxBufferFull()},
		{"data_overrun", st.DataOverrun()},
		{"tx_buffer_free", st.TxBufferFree()},
		{"tx_complete", st.TxComplete()},
		{"receiving", st.Receiving()},
		{"transmitting", st.Transmitting()},
		{"error", st.ErrorStatus()},
		{"bus_off", st.BusOff()},
	} {
		metrics.SetStatusBit(b.name, b.on)
	}
	for _, src := range snap.Interrupts.Sources() {
		metrics.IncInterrupt(src.Name())
	}
	if snap.Interrupts.Has(sja1000.IntArbLost) {
		metrics.IncArbitrationLost()
	}
	if snap.Interrupts.Has(sja1000.IntBusError) {
		metrics.IncBusError(snap.ErrorCode.Type.String())
	}
}

func (s *Sampler) logTransitions(snap Snapshot) {
	if !s.hasPrev {
		s.logger.Info("monitor_initial_state",
			"reset_mode", snap.Mode.ResetMode(),
			"bus_off", snap.Status.BusOff(),
			"error_status", snap.Status.ErrorStatus(),
			"rx_err", snap.RxErr,
			"tx_err", snap.TxErr,
		)
		return
	}
	p := s.prev
	if p.Status.BusOff() != snap.Status.BusOff() {
		if snap.Status.BusOff() {
			s.logger.Warn("bus_off_entered", "tx_err", snap.TxErr)
		} else {
			s.logger.Info("bus_off_left")
		}
	}
	if p.Status.ErrorStatus() != snap.Status.ErrorStatus() {
		s.logger.Info("error_status_changed", "set", snap.Status.ErrorStatus(), "rx_err", snap.RxErr, "tx_err", snap.TxErr, "limit", snap.WarnLimit)
	}
	if p.ErrorPassive() != snap.ErrorPassive() {
		s.logger.Info("error_passive_changed", "passive", snap.ErrorPassive(), "rx_err", snap.RxErr, "tx_err", snap.TxErr)
	}
	if p.Mode.ResetMode() != snap.Mode.ResetMode() {
		s.logger.Info("reset_mode_changed", "reset", snap.Mode.ResetMode())
	}
	if snap.Interrupts.Has(sja1000.IntBusError) {
		s.logger.Debug("bus_error_captured",
			"type", snap.ErrorCode.Type.String(),
			"rx", snap.ErrorCode.Receive,
			"segment", snap.ErrorCode.Segment,
		)
	}
}

// Run samples until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		snap := s.Sample()
		if s.onSample != nil {
			s.onSample(snap)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
