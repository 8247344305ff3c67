package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the harness's own counters so long-running benchmark
// hosts can be scraped about the benchmarks they run.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	WorkloadsCompleted *prometheus.CounterVec
	ProbeFailures      prometheus.Counter
}

// NewMetrics builds the harness metric set on a private registry, keeping
// the exposition free of default process collectors owned by the system
// under test.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "syncbench_runs_total",
			Help: "Benchmark runs executed, by label and terminal phase.",
		}, []string{"label", "phase"}),
		WorkloadsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "syncbench_workloads_completed_total",
			Help: "Workloads that reached a completed outcome, by label.",
		}, []string{"label"}),
		ProbeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "syncbench_probe_failures_total",
			Help: "Probe samples recorded as unavailable.",
		}),
	}
	m.registry.MustRegister(m.RunsTotal, m.WorkloadsCompleted, m.ProbeFailures)
	return m
}

// Handler returns the scrape handler for the harness registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr. It blocks, so callers run it in a
// goroutine next to the benchmark.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
