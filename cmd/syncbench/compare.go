package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncbench/internal/compare"
	"syncbench/internal/notify"
)

var (
	compareFormat     string
	compareThreshold  float64
	compareFailOnRegr bool
	compareNotify     bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <labelA> <labelB>",
	Short: "Compare the latest RunRecords of two labels",
	Long: `Loads the most recent RunRecord for each label and renders the delta
report: percentage change per metric common to both records, plus explicit
"-only" buckets for metrics present on one side. Output ordering is
deterministic, so repeated invocations over the same records diff clean.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVar(&compareFormat, "format", "table", "output format: table, json, markdown or csv")
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", 10.0, "percent change classifying a row as improved or regressed")
	compareCmd.Flags().BoolVar(&compareFailOnRegr, "fail-on-regression", false, "exit non-zero when any metric regressed beyond the threshold")
	compareCmd.Flags().BoolVar(&compareNotify, "notify", false, "send a notification when a regression is detected")
}

func runCompare(cmd *cobra.Command, args []string) error {
	rep, err := buildReport(cmd, args[0], args[1], compareThreshold)
	if err != nil {
		return err
	}

	if err := compare.Render(cmd.OutOrStdout(), rep, compareFormat); err != nil {
		return err
	}

	regressions := rep.Regressions()
	if len(regressions) > 0 && compareNotify {
		notify.NewManager().Notify(cmd.Context(), notify.EventRegression,
			fmt.Sprintf("syncbench: %d metric(s) regressed beyond %.1f%% comparing %s vs %s",
				len(regressions), compareThreshold, args[0], args[1]))
	}
	if len(regressions) > 0 && compareFailOnRegr {
		return fmt.Errorf("%d metric(s) regressed beyond %.1f%%", len(regressions), compareThreshold)
	}
	return nil
}

// buildReport fetches the latest record per label and compares them.
func buildReport(cmd *cobra.Command, beforeLabel, afterLabel string, threshold float64) (*compare.Report, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	before, err := st.Latest(cmd.Context(), beforeLabel)
	if err != nil {
		return nil, err
	}
	after, err := st.Latest(cmd.Context(), afterLabel)
	if err != nil {
		return nil, err
	}
	return compare.Compare(before, after, threshold)
}
