package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Chdir(t.TempDir())
	Load("")

	sc := ScenarioSettings()
	assert.Equal(t, 10, sc.Count)
	assert.Equal(t, 10*time.Minute, sc.Timeout)
	assert.Equal(t, 5*time.Second, sc.PollInterval)
	assert.Equal(t, 4, sc.Parallelism)
	assert.Equal(t, "bench", sc.Prefix)

	assert.Equal(t, "sqlite", StoreSettings().Type)
	assert.Equal(t, "kubernetes", ControlPlaneSettings(false).Type)
	assert.Equal(t, "fake", ControlPlaneSettings(true).Type)
	assert.Equal(t, 10*time.Second, ProbeTimeout())
}

func TestLoadConfigFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := `
scenario:
  count: 25
  timeout: 3m
store:
  type: postgres
  dsn: postgres://bench@localhost/bench?sslmode=disable
probes:
  - name: sync_seconds
    kind: scrape
    address: http://localhost:8082/metrics
    metric: app_sync_seconds
    labels:
      phase: apply
    unit: s
  - name: queue_depth
    kind: promql
    address: http://localhost:9090
    query: avg(workqueue_depth)
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	Load(cfgPath)

	sc := ScenarioSettings()
	assert.Equal(t, 25, sc.Count)
	assert.Equal(t, 3*time.Minute, sc.Timeout)
	// unset keys keep their defaults
	assert.Equal(t, 4, sc.Parallelism)

	st := StoreSettings()
	assert.Equal(t, "postgres", st.Type)

	specs, err := ProbeSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "sync_seconds", specs[0].Name)
	assert.Equal(t, "scrape", specs[0].Kind)
	assert.Equal(t, map[string]string{"phase": "apply"}, specs[0].Labels)
	assert.Equal(t, "promql", specs[1].Kind)
	assert.Equal(t, "avg(workqueue_depth)", specs[1].Query)
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Chdir(t.TempDir())
	t.Setenv("SYNCBENCH_SCENARIO_COUNT", "42")
	Load("")

	assert.Equal(t, 42, ScenarioSettings().Count)
}
