package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"syncbench/internal/controlplane"
)

var cleanupYes bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <label>",
	Short: "Delete the benchmark workloads created for a label",
	Args:  cobra.ExactArgs(1),
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().BoolVar(&cleanupYes, "yes", false, "skip the confirmation prompt")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	label := args[0]

	cp, err := openControlPlane()
	if err != nil {
		return err
	}
	defer cp.Close()

	statuses, err := cp.List(cmd.Context(), controlplane.Selector(label))
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No workloads found for label %q.\n", label)
		return nil
	}

	if !cleanupYes {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete %d workload(s) for label %q?", len(statuses), label),
		}
		if err := askOneFunc(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	deleted := 0
	for _, st := range statuses {
		if err := cp.Delete(cmd.Context(), st.Name); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to delete %s: %v\n", st.Name, err)
			continue
		}
		deleted++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d workload(s) for label %q.\n", deleted, label)
	return nil
}
