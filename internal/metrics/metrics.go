package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/kstaniek/go-canregs/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus series
var (
	RxErrorCounter = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "can_rx_error_counter",
		Help: "Receive error counter (RXERR) at the last sample.",
	})
	TxErrorCounter = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "can_tx_error_counter",
		Help: "Transmit error counter (TXERR) at the last sample.",
	})
	ErrorWarningLimit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "can_error_warning_limit",
		Help: "Error warning limit (EWLR) at the last sample.",
	})
	RxMessages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "can_rx_fifo_messages",
		Help: "Messages pending in the receive FIFO (RMC) at the last sample.",
	})
	StatusBits = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "can_status",
		Help: "Status register bits (SR) at the last sample, 1 when set.",
	}, []string{"bit"})
	ResetMode = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "can_reset_mode",
		Help: "1 while the controller is held in reset mode (MOD.RM).",
	})
	Interrupts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "can_interrupts_total",
		Help: "Interrupt flags observed in IR, by source.",
	}, []string{"source"})
	ArbitrationLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "can_arbitration_lost_total",
		Help: "Arbitration-lost captures read from ALC.",
	})
	BusErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "can_bus_errors_total",
		Help: "Bus error captures read from ECC, by error type.",
	}, []string{"type"})
	Samples = promauto.NewCounter(prometheus.CounterOpts{
		Name: "register_samples_total",
		Help: "Total register sampling passes.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})
	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Error label constants (stable label values to bound cardinality)
const (
	ErrMap     = "map"
	ErrMDNS    = "mdns"
	ErrMetrics = "metrics_http"
)

// StartHTTP serves Prometheus metrics at /metrics and readiness at /ready.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			IncError(ErrMetrics)
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters for easy logging (avoid Prometheus scraping in-process)
var (
	localSamples    uint64
	localErrors     uint64
	localInterrupts uint64
	localArbLost    uint64
	localBusErrors  uint64
	localRxErr      uint64
	localTxErr      uint64
	localBusOff     uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	Samples    uint64
	Errors     uint64 // sum across error labels
	Interrupts uint64 // sum across sources
	ArbLost    uint64
	BusErrors  uint64
	RxErr      uint64
	TxErr      uint64
	BusOff     bool
}

func Snap() Snapshot {
	return Snapshot{
		Samples:    atomic.LoadUint64(&localSamples),
		Errors:     atomic.LoadUint64(&localErrors),
		Interrupts: atomic.LoadUint64(&localInterrupts),
		ArbLost:    atomic.LoadUint64(&localArbLost),
		BusErrors:  atomic.LoadUint64(&localBusErrors),
		RxErr:      atomic.LoadUint64(&localRxErr),
		TxErr:      atomic.LoadUint64(&localTxErr),
		BusOff:     atomic.LoadUint64(&localBusOff) != 0,
	}
}

func IncSamples() {
	Samples.Inc()
	atomic.AddUint64(&localSamples, 1)
}

// SetErrorCounters records RXERR, TXERR and EWLR.
func SetErrorCounters(rx, tx, limit uint8) {
	RxErrorCounter.Set(float64(rx))
	TxErrorCounter.Set(float64(tx))
	ErrorWarningLimit.Set(float64(limit))
	atomic.StoreUint64(&localRxErr, uint64(rx))
	atomic.StoreUint64(&localTxErr, uint64(tx))
}

func SetRxMessages(n uint8) { RxMessages.Set(float64(n)) }

// SetStatusBit records one SR bit by label.
func SetStatusBit(bit string, on bool) {
	v := 0.0
	if on {
		v = 1
	}
	StatusBits.WithLabelValues(bit).Set(v)
	if bit == "bus_off" {
		var u uint64
		if on {
			u = 1
		}
		atomic.StoreUint64(&localBusOff, u)
	}
}

func SetResetMode(on bool) {
	if on {
		ResetMode.Set(1)
		return
	}
	ResetMode.Set(0)
}

func IncInterrupt(source string) {
	Interrupts.WithLabelValues(source).Inc()
	atomic.AddUint64(&localInterrupts, 1)
}

func IncArbitrationLost() {
	ArbitrationLost.Inc()
	atomic.AddUint64(&localArbLost, 1)
}

func IncBusError(kind string) {
	BusErrors.WithLabelValues(kind).Inc()
	atomic.AddUint64(&localBusErrors, 1)
}

func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (should be called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	// Pre-register common error label series so first error does not log a registration latency.
	for _, lbl := range []string{ErrMap, ErrMDNS, ErrMetrics} {
		Errors.WithLabelValues(lbl).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil { // if not set yet, treat as ready so metrics endpoint doesn't flap
		return true
	}
	return fn()
}
