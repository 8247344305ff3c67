package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"syncbench/internal/config"
	"syncbench/internal/notify"
	"syncbench/internal/probe"
	"syncbench/internal/record"
	"syncbench/internal/scenario"
	"syncbench/internal/telemetry"
)

var (
	runCount       int
	runTimeout     time.Duration
	runBurst       bool
	runCleanupFlag bool
	runNotify      bool
	runMetricsAddr string
)

var runCmd = &cobra.Command{
	Use:   "run <label>",
	Short: "Execute one benchmark scenario and persist its RunRecord",
	Long: `Provisions the scenario workloads under the given configuration label,
optionally triggers a re-sync burst, waits for convergence, samples the
configured probes and writes the resulting RunRecord to the result store.

Hitting the waiting deadline or losing individual probes degrades the record
(warnings on stderr) but still persists it and exits 0. Only an unreachable
control plane, invalid configuration or a store write failure exit non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runCount, "count", 0, "number of workloads to provision (default from config)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "convergence deadline (default from config)")
	runCmd.Flags().BoolVar(&runBurst, "burst", false, "force-refresh every workload after provisioning")
	runCmd.Flags().BoolVar(&runCleanupFlag, "cleanup", false, "delete the provisioned workloads after sampling")
	runCmd.Flags().BoolVar(&runNotify, "notify", false, "send a notification when the run completes")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "expose harness metrics on this address while running")
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := config.ValidateConfig(); err != nil {
		return err
	}
	label := args[0]

	opts := scenarioOptions(cmd, label)

	cp, err := openControlPlane()
	if err != nil {
		return err
	}
	defer cp.Close()

	specs, err := config.ProbeSpecs()
	if err != nil {
		return err
	}
	var sampler *probe.Sampler
	if len(specs) > 0 {
		sampler = probe.NewSampler(specs, config.ProbeTimeout(), cp, label)
	}

	metrics := telemetry.NewMetrics()
	if runMetricsAddr != "" {
		go func() {
			if err := metrics.Serve(runMetricsAddr); err != nil {
				slog.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	runner := scenario.NewRunner(cp, sampler, opts)
	rec, err := runner.Run(cmd.Context())
	if err != nil {
		metrics.RunsTotal.WithLabelValues(label, string(scenario.PhaseFailed)).Inc()
		return err
	}
	metrics.RunsTotal.WithLabelValues(label, string(scenario.PhaseDone)).Inc()
	metrics.WorkloadsCompleted.WithLabelValues(label).Add(float64(rec.Completed))

	if rec.TimedOut {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning [%s]: deadline hit with %d/%d workloads completed\n",
			"timeout_partial_completion", rec.Completed, rec.Total)
	}
	for _, m := range rec.Measurements {
		if m.Unavailable {
			metrics.ProbeFailures.Inc()
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning [%s]: probe %s produced no value, recorded as N/A\n",
				"probe_unavailable", m.Name)
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Put(cmd.Context(), rec); err != nil {
		return err
	}

	printRunSummary(cmd, rec)

	if runNotify {
		notify.NewManager().Notify(cmd.Context(), notify.EventRunComplete,
			fmt.Sprintf("syncbench run %q finished: %d/%d workloads completed (timed out: %t)",
				label, rec.Completed, rec.Total, rec.TimedOut))
	}
	return nil
}

// scenarioOptions merges config defaults with explicit flag overrides.
func scenarioOptions(cmd *cobra.Command, label string) scenario.Options {
	sc := config.ScenarioSettings()
	opts := scenario.Options{
		Label:        label,
		Count:        sc.Count,
		Timeout:      sc.Timeout,
		PollInterval: sc.PollInterval,
		Parallelism:  sc.Parallelism,
		Image:        sc.Image,
		Prefix:       sc.Prefix,
		Burst:        runBurst,
		Cleanup:      runCleanupFlag,
	}
	if cmd.Flags().Changed("count") {
		opts.Count = runCount
	}
	if cmd.Flags().Changed("timeout") {
		opts.Timeout = runTimeout
	}
	return opts
}

func printRunSummary(cmd *cobra.Command, rec *record.RunRecord) {
	fmt.Fprintf(cmd.OutOrStdout(), "Run %q recorded at %s: %d/%d workloads completed\n\n",
		rec.Label, rec.StartedAt.Format(time.RFC3339), rec.Completed, rec.Total)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MEASUREMENT\tVALUE\tUNIT")
	for _, m := range rec.Measurements {
		value := fmt.Sprintf("%.2f", m.Value)
		if m.Unavailable {
			value = "N/A"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, value, m.Unit)
	}
	w.Flush()
}
