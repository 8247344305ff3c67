package main

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"syncbench/internal/compare"
)

var reportThreshold float64

var reportCmd = &cobra.Command{
	Use:   "report <labelA> <labelB>",
	Short: "Render the comparison as a styled terminal report",
	Long: `Builds the same comparison as 'compare' and renders the markdown form
through a terminal renderer. Use 'compare --format markdown' for the raw,
machine-diffable document.`,
	Args: cobra.ExactArgs(2),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Float64Var(&reportThreshold, "threshold", 10.0, "percent change classifying a row as improved or regressed")
}

func runReport(cmd *cobra.Command, args []string) error {
	rep, err := buildReport(cmd, args[0], args[1], reportThreshold)
	if err != nil {
		return err
	}

	var md bytes.Buffer
	if err := compare.RenderMarkdown(&md, rep); err != nil {
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
