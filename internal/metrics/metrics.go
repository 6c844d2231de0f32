package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_runs_total", Help: "Evaluation runs by result"},
		[]string{"result"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_run_duration_seconds",
			Help:    "Wall time of one evaluation run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_signals_total", Help: "Signals fired per ticker"},
		[]string{"symbol", "signal"},
	)
	TickerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_ticker_errors_total", Help: "Tickers that failed analysis"},
		[]string{"symbol"},
	)
	StateResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sentinel_state_resets_total", Help: "Signal state resets"},
	)
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_notifications_total", Help: "Report deliveries by result"},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(RunsTotal, RunDuration, SignalsTotal, TickerErrorsTotal, StateResetsTotal, NotificationsTotal)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
