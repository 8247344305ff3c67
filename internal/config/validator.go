package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"syncbench/internal/errdefs"
	"syncbench/internal/record"
)

// ValidateConfig validates configuration values and returns an error listing
// every violation found, not just the first one. Call after Load.
func ValidateConfig() error {
	var violations []string

	if count := viper.GetInt("scenario.count"); count <= 0 {
		violations = append(violations, fmt.Sprintf("scenario.count must be positive, got: %d", count))
	}
	if timeout := viper.GetDuration("scenario.timeout"); timeout <= 0 {
		violations = append(violations, fmt.Sprintf("scenario.timeout must be positive, got: %v", timeout))
	}
	if interval := viper.GetDuration("scenario.poll_interval"); interval <= 0 {
		violations = append(violations, fmt.Sprintf("scenario.poll_interval must be positive, got: %v", interval))
	}
	if par := viper.GetInt("scenario.parallelism"); par <= 0 {
		violations = append(violations, fmt.Sprintf("scenario.parallelism must be positive, got: %d", par))
	}
	if prefix := viper.GetString("scenario.prefix"); prefix == "" {
		violations = append(violations, "scenario.prefix must not be empty")
	}

	switch t := viper.GetString("store.type"); t {
	case "sqlite", "postgres", "":
	default:
		violations = append(violations, fmt.Sprintf("store.type must be sqlite or postgres, got: %q", t))
	}

	switch t := viper.GetString("controlplane.type"); t {
	case "kubernetes", "docker", "fake", "":
	default:
		violations = append(violations, fmt.Sprintf("controlplane.type must be kubernetes, docker or fake, got: %q", t))
	}

	violations = append(violations, validateProbes()...)

	if len(violations) > 0 {
		return errdefs.Newf(errdefs.InvalidConfig, "config.validate",
			"configuration validation failed:\n  - %s", strings.Join(violations, "\n  - "))
	}
	return nil
}

// validateProbes checks probe names for duplicates and collisions with the
// measurement names every run emits on its own.
func validateProbes() []string {
	specs, err := ProbeSpecs()
	if err != nil {
		return []string{err.Error()}
	}

	reserved := map[string]bool{}
	for _, name := range record.ReservedMeasurements() {
		reserved[name] = true
	}

	var violations []string
	seen := map[string]bool{}
	for _, spec := range specs {
		if spec.Name == "" {
			violations = append(violations, "probe name must not be empty")
			continue
		}
		if reserved[spec.Name] {
			violations = append(violations, fmt.Sprintf("probe %q collides with a built-in measurement name", spec.Name))
		}
		if seen[spec.Name] {
			violations = append(violations, fmt.Sprintf("probe %q is defined more than once", spec.Name))
		}
		seen[spec.Name] = true

		switch spec.Kind {
		case "promql", "scrape", "controlplane":
		default:
			violations = append(violations, fmt.Sprintf("probe %q has unknown kind %q (want promql, scrape or controlplane)", spec.Name, spec.Kind))
		}
	}
	return violations
}
