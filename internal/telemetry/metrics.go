package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FramesDecoded counts beacons, probe responses and scan results whose
	// capability elements decoded successfully
	FramesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifiht",
			Name:      "frames_decoded_total",
			Help:      "Total number of frames and scan results decoded",
		},
		[]string{"source"},
	)

	// DecodeErrors counts capability decode failures by error kind
	DecodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifiht",
			Name:      "decode_errors_total",
			Help:      "Total number of information element decode failures",
		},
		[]string{"source", "kind"},
	)

	// BSSMaxRate reports the highest HT rate advertised by each BSS
	BSSMaxRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wifiht",
			Name:      "bss_max_rate_mbps",
			Help:      "Highest HT MCS data rate advertised by a BSS in Mbit/s",
		},
		[]string{"bssid"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		_ = prometheus.DefaultRegisterer.Register(FramesDecoded)
		_ = prometheus.DefaultRegisterer.Register(DecodeErrors)
		_ = prometheus.DefaultRegisterer.Register(BSSMaxRate)
	})
}

// Handler returns the HTTP handler serving the global registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDecoded records a successful decode from source
func ObserveDecoded(source string) {
	FramesDecoded.WithLabelValues(source).Inc()
}

// ObserveError records a decode failure of the given kind from source
func ObserveError(source, kind string) {
	DecodeErrors.WithLabelValues(source, kind).Inc()
}

// ObserveMaxRate records the highest advertised rate of a BSS
func ObserveMaxRate(bssid string, mbps float64) {
	BSSMaxRate.WithLabelValues(bssid).Set(mbps)
}

// ForgetBSS removes the rate series of a BSS that is no longer seen
func ForgetBSS(bssid string) {
	BSSMaxRate.DeleteLabelValues(bssid)
}
