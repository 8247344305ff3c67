package telemetry

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.RunsTotal.WithLabelValues("baseline", "Done").Inc()
	m.WorkloadsCompleted.WithLabelValues("baseline").Add(10)
	m.ProbeFailures.Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(data)

	assert.Contains(t, body, `syncbench_runs_total{label="baseline",phase="Done"} 1`)
	assert.Contains(t, body, `syncbench_workloads_completed_total{label="baseline"} 10`)
	assert.Contains(t, body, "syncbench_probe_failures_total 1")
}

func TestMetricsRegistryIsPrivate(t *testing.T) {
	// two instances must not collide on registration
	_ = NewMetrics()
	assert.NotPanics(t, func() { _ = NewMetrics() })
}
