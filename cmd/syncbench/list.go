package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [label]",
	Short: "List stored benchmark runs, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	label := ""
	if len(args) == 1 {
		label = args[0]
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := st.List(cmd.Context(), label)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tSTARTED\tSCHEMA\tCOMPLETED\tTIMED OUT")
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d/%d\t%t\n",
			s.ID, s.Label, s.StartedAt.Format(time.RFC3339), s.SchemaVersion,
			s.Completed, s.Total, s.TimedOut)
	}
	return w.Flush()
}
