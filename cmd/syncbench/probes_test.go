package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncbench/internal/controlplane"
)

func TestProbesNoneConfigured(t *testing.T) {
	setupTestEnv(t)

	output, err := executeCommand(rootCmd, "probes")
	require.NoError(t, err)
	assert.Contains(t, output, "No probes configured.")
}

func TestProbesScrapeAndControlPlane(t *testing.T) {
	setupTestEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.Write([]byte("# TYPE app_sync_seconds gauge\napp_sync_seconds 1.5\n"))
	}))
	defer srv.Close()

	cp := controlplane.NewFake()
	require.NoError(t, cp.Create(context.Background(), controlplane.Spec{
		Name:   "bench-x-0",
		Labels: controlplane.ManagedLabels("x"),
	}))
	withControlPlane(t, cp)

	viper.Set("probes", []map[string]interface{}{
		{"name": "sync_seconds", "kind": "scrape", "address": srv.URL, "metric": "app_sync_seconds", "unit": "seconds"},
		{"name": "workloads", "kind": "controlplane", "metric": "workloads_total"},
	})

	output, err := executeCommand(rootCmd, "probes")
	require.NoError(t, err)
	assert.Contains(t, output, "PROBE")
	assert.Contains(t, output, "sync_seconds")
	assert.Contains(t, output, "1.50")
	assert.Contains(t, output, "workloads")
	assert.Contains(t, output, "1.00")
}

func TestProbesUnreachableEndpointShowsNA(t *testing.T) {
	setupTestEnv(t)
	viper.Set("probe_timeout", "200ms")
	viper.Set("probes", []map[string]interface{}{
		{"name": "sync_seconds", "kind": "promql", "address": "http://127.0.0.1:1", "query": "up"},
	})

	output, err := executeCommand(rootCmd, "probes")
	require.NoError(t, err)
	assert.Contains(t, output, "N/A")
}

func TestProbesControlPlaneUnavailableDegrades(t *testing.T) {
	setupTestEnv(t)

	original := newControlPlane
	newControlPlane = func(controlplane.Config) (controlplane.Interface, error) {
		return nil, errors.New("no cluster")
	}
	t.Cleanup(func() { newControlPlane = original })

	viper.Set("probes", []map[string]interface{}{
		{"name": "workloads", "kind": "controlplane", "metric": "workloads_total"},
	})

	output, err := executeCommand(rootCmd, "probes")
	require.NoError(t, err)
	assert.Contains(t, output, "controlplane probes will read N/A")
	assert.Contains(t, output, "N/A")
}
