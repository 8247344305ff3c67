package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"syncbench/internal/config"
	"syncbench/internal/controlplane"
	"syncbench/internal/probe"
)

var probesLabel string

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "Run one sampling pass over the configured probes",
	Long: `Attempts every configured probe once and prints the values. Probes that
fail show as N/A, which makes this the fastest way to debug a metrics
endpoint before burning a full benchmark run on it.`,
	Args: cobra.NoArgs,
	RunE: runProbes,
}

func init() {
	rootCmd.AddCommand(probesCmd)
	probesCmd.Flags().StringVar(&probesLabel, "label", "", "bench label scoping control-plane probes")
}

func runProbes(cmd *cobra.Command, args []string) error {
	if err := config.ValidateConfig(); err != nil {
		return err
	}
	specs, err := config.ProbeSpecs()
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No probes configured.")
		return nil
	}

	// Control-plane probes need a backend; the others work without one, so
	// a missing cluster only degrades that probe kind.
	var cp controlplane.Interface
	if c, err := openControlPlane(); err == nil {
		cp = c
		defer cp.Close()
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: control plane unavailable, controlplane probes will read N/A: %v\n", err)
	}

	sampler := probe.NewSampler(specs, config.ProbeTimeout(), cp, probesLabel)
	measurements := sampler.Sample(cmd.Context())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PROBE\tVALUE\tUNIT")
	for _, m := range measurements {
		value := fmt.Sprintf("%.2f", m.Value)
		if m.Unavailable {
			value = "N/A"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, value, m.Unit)
	}
	return w.Flush()
}
