package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	pruneKeep   int
	pruneDryRun bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune <label>",
	Short: "Delete all but the newest N runs of a label",
	Long: `Records are append-only and never expire on their own; prune is the
operator-initiated retention pass. The newest --keep runs of the label are
retained, everything older is deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 5, "number of most recent runs to retain")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "report what would be deleted without deleting")
}

func runPrune(cmd *cobra.Command, args []string) error {
	label := args[0]
	if pruneKeep < 0 {
		return fmt.Errorf("--keep must not be negative, got %d", pruneKeep)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if pruneDryRun {
		summaries, err := st.List(cmd.Context(), label)
		if err != nil {
			return err
		}
		victims := len(summaries) - pruneKeep
		if victims < 0 {
			victims = 0
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Would delete %d run(s) for label %q, keeping %d.\n", victims, label, pruneKeep)
		return nil
	}

	removed, err := st.Prune(cmd.Context(), label, pruneKeep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s) for label %q, keeping the newest %d.\n", removed, label, pruneKeep)
	return nil
}
