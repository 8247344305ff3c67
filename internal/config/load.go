package config

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration from file and environment variables.
// Flags override file values, file values override defaults; every key is
// also reachable through the SYNCBENCH_ environment prefix.
func Load(cfgFile string) {
	// explicit .env loading; a missing file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SYNCBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		// an explicitly requested file that cannot be read must not be
		// silently replaced by defaults
		slog.Warn("failed to read config file", "path", cfgFile, "error", err)
	}
}

func setDefaults() {
	viper.SetDefault("verbose", false)

	// Scenario shape
	viper.SetDefault("scenario.count", 10)
	viper.SetDefault("scenario.timeout", "10m")
	viper.SetDefault("scenario.poll_interval", "5s")
	viper.SetDefault("scenario.parallelism", 4)
	viper.SetDefault("scenario.image", "registry.k8s.io/pause:3.9")
	viper.SetDefault("scenario.prefix", "bench")

	// Workload control plane
	viper.SetDefault("controlplane.type", "kubernetes")
	viper.SetDefault("controlplane.namespace", "default")

	// Result store
	viper.SetDefault("store.type", "sqlite")
	viper.SetDefault("store.dsn", "syncbench.db")

	// Metric sampling
	viper.SetDefault("probe_timeout", "10s")

	// Notifications
	viper.SetDefault("notifications.slack.enabled", false)
	viper.SetDefault("notifications.slack.channel", "#benchmarks")
	viper.SetDefault("notifications.slack.events.on_run_complete", true)
	viper.SetDefault("notifications.slack.events.on_regression", true)
}
