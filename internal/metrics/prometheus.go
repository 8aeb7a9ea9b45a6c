package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netgraphx_runs_total",
		Help: "Reconciliation runs by outcome (match, mismatch, failed).",
	}, []string{"outcome"})

	StageFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netgraphx_stage_failures_total",
		Help: "Failed runs by failing state and error kind.",
	}, []string{"state", "kind"})

	OracleDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netgraphx_oracle_duration_seconds",
		Help:    "Latency of oracle calls.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
	}, []string{"request"})

	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "netgraphx_run_duration_seconds",
		Help:    "Duration of a whole reconciliation run.",
		Buckets: prometheus.DefBuckets,
	})
)

// MustRegister registers all collectors; call it once from main.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(Runs, StageFailures, OracleDuration, RunDuration)
}
