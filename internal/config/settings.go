package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"syncbench/internal/controlplane"
	"syncbench/internal/probe"
	"syncbench/internal/store"
)

// Scenario carries the parameters of one benchmark invocation. It is built
// once from the effective configuration and passed into the runner
// explicitly; core logic never reads ambient state.
type Scenario struct {
	Count        int
	Timeout      time.Duration
	PollInterval time.Duration
	Parallelism  int
	Image        string
	Prefix       string
}

// ScenarioSettings reads the scenario section of the configuration.
func ScenarioSettings() Scenario {
	return Scenario{
		Count:        viper.GetInt("scenario.count"),
		Timeout:      viper.GetDuration("scenario.timeout"),
		PollInterval: viper.GetDuration("scenario.poll_interval"),
		Parallelism:  viper.GetInt("scenario.parallelism"),
		Image:        viper.GetString("scenario.image"),
		Prefix:       viper.GetString("scenario.prefix"),
	}
}

// StoreSettings reads the result store section of the configuration.
func StoreSettings() store.Config {
	return store.Config{
		Type: viper.GetString("store.type"),
		DSN:  viper.GetString("store.dsn"),
	}
}

// ControlPlaneSettings reads the control plane section of the configuration.
// When mock is true the type is forced to the in-memory fake.
func ControlPlaneSettings(mock bool) controlplane.Config {
	cfg := controlplane.Config{
		Type:      viper.GetString("controlplane.type"),
		Namespace: viper.GetString("controlplane.namespace"),
	}
	if mock {
		cfg.Type = "fake"
	}
	return cfg
}

// ProbeSpecs reads the configured metric probes.
func ProbeSpecs() ([]probe.Spec, error) {
	var specs []probe.Spec
	if err := viper.UnmarshalKey("probes", &specs); err != nil {
		return nil, fmt.Errorf("decode probes config: %w", err)
	}
	return specs, nil
}

// ProbeTimeout reads the per-probe timeout.
func ProbeTimeout() time.Duration {
	return viper.GetDuration("probe_timeout")
}
