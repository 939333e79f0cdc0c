package web

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/at-addrcompare/internal/compare"
)

// Metrics provides observability for report requests and the
// reconciliation runs behind them.
type Metrics struct {
	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	Diagnostics     *prometheus.CounterVec
	Completeness    *prometheus.GaugeVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the server metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "addrcompare_runs_total",
			Help: "Reconciliation runs by outcome",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "addrcompare_run_duration_seconds",
			Help:    "Duration of reconciliation runs including data fetching",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 60, 120},
		}),
		Diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "addrcompare_diagnostics_total",
			Help: "Skipped or degraded source records by source and kind",
		}, []string{"source", "kind"}),
		Completeness: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "addrcompare_completeness_percent",
			Help: "Share of register addresses found in map data, by municipality",
		}, []string{"gkz"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "addrcompare_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveRun records the outcome of one reconciliation.
func (m *Metrics) ObserveRun(run *compare.Run, err error, took time.Duration) {
	m.RunDuration.Observe(took.Seconds())
	if err != nil {
		m.Runs.WithLabelValues("error").Inc()
		return
	}
	m.Runs.WithLabelValues("ok").Inc()

	for _, d := range run.Diagnostics {
		m.Diagnostics.WithLabelValues(string(d.Source), string(d.Kind)).Inc()
	}
	if pct, ok := run.Result.Completeness(); ok {
		m.Completeness.WithLabelValues(strconv.Itoa(run.GKZ)).Set(pct)
	}
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, took time.Duration) {
	m.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(took.Seconds())
}
