package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"syncbench/internal/config"
	"syncbench/internal/controlplane"
	"syncbench/internal/errdefs"
	"syncbench/internal/store"
	"syncbench/internal/telemetry"
)

var exit = os.Exit
var cfgFile string

// Factory indirections so tests can substitute scripted backends.
var newControlPlane = controlplane.New
var newStore = store.New

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "syncbench",
	Short: "A/B configuration benchmark harness for workload platforms",
	Long: `syncbench benchmarks a workload orchestration platform under different
configuration profiles. Each run provisions N workloads, waits for them to
converge, samples the configured metric probes and persists an immutable
RunRecord under the given label. Records for two labels can then be compared
into a deterministic delta report.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and maps failures to the exit contract:
// non-zero with the error kind on stderr for unrecoverable failures.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", errdefs.KindOf(err), err)
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initRuntime)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose/debug logging")
	rootCmd.PersistentFlags().Bool("mock", false, "use the in-memory fake control plane (no cluster required)")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("mock", rootCmd.PersistentFlags().Lookup("mock"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initRuntime() {
	config.Load(cfgFile)
	telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log_file"))
}

// openControlPlane builds the configured control plane backend, honoring
// the --mock override.
func openControlPlane() (controlplane.Interface, error) {
	return newControlPlane(config.ControlPlaneSettings(viper.GetBool("mock")))
}

// openStore builds the configured result store.
func openStore() (store.Store, error) {
	return newStore(config.StoreSettings())
}
