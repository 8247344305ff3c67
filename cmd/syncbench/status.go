package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"syncbench/internal/controlplane"
	"syncbench/internal/ui"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status [label]",
	Short: "Show the benchmark workloads known to the control plane",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "live dashboard refreshing on a fixed tick")
}

func runStatus(cmd *cobra.Command, args []string) error {
	label := ""
	if len(args) == 1 {
		label = args[0]
	}

	cp, err := openControlPlane()
	if err != nil {
		return err
	}
	defer cp.Close()

	if statusWatch {
		model := ui.NewStatusDashboardModel(ui.StatusCallbacks{
			GetWorkloads: func() ([]controlplane.Status, error) {
				return cp.List(context.Background(), controlplane.Selector(label))
			},
		})
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}

	statuses, err := cp.List(cmd.Context(), controlplane.Selector(label))
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No benchmark workloads found.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderStatusTable(statuses))
	return nil
}
