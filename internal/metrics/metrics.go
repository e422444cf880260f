package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cryptoflow_scan_cycles_total",
		Help: "Scan-and-notify cycles started.",
	})

	CycleErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cryptoflow_scan_cycle_errors_total",
		Help: "Cycles that ended in an error or panic.",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cryptoflow_scan_cycle_duration_seconds",
		Help:    "Duration of a full scan-and-notify cycle.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	QualifiedSymbols = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cryptoflow_qualified_symbols",
		Help: "Symbols above their SMA in the most recent scan.",
	})

	FetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cryptoflow_fetch_errors_total",
		Help: "Market data requests that failed.",
	}, []string{"kind"})

	AlertsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cryptoflow_alerts_sent_total",
		Help: "Alert notifications delivered.",
	})

	NotifyErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cryptoflow_notify_errors_total",
		Help: "Notifications that could not be delivered.",
	})

	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cryptoflow_dashboard_cache_lookups_total",
		Help: "Dashboard candle cache lookups by result.",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "cryptoflow_http_request_duration_seconds",
		Help: "Duration of dashboard HTTP requests.",
	}, []string{"path", "status"})
)
