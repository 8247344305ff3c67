package compare

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"syncbench/internal/record"
)

// Render writes the report in the requested format. Output is deterministic
// for a given report: the same two records always render byte-identically.
func Render(w io.Writer, rep *Report, format string) error {
	switch format {
	case "table", "":
		return renderTable(w, rep)
	case "json":
		return renderJSON(w, rep)
	case "markdown":
		return RenderMarkdown(w, rep)
	case "csv":
		return renderCSV(w, rep)
	default:
		return fmt.Errorf("unknown report format %q (want table, json, markdown or csv)", format)
	}
}

func renderTable(w io.Writer, rep *Report) error {
	fmt.Fprintf(w, "Comparing %s (before) vs %s (after), threshold %.1f%%\n\n", rep.BeforeLabel, rep.AfterLabel, rep.Threshold)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tBEFORE\tAFTER\tDELTA %\tSTATUS")
	for _, row := range rep.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			row.Name, sideValue(row.Before, row.BeforeUnavailable),
			sideValue(row.After, row.AfterUnavailable), deltaValue(row), row.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	renderOnlyBucket(w, "Only in "+rep.BeforeLabel, rep.BeforeOnly)
	renderOnlyBucket(w, "Only in "+rep.AfterLabel, rep.AfterOnly)
	return nil
}

func renderOnlyBucket(w io.Writer, title string, measurements []record.Measurement) {
	if len(measurements) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, m := range measurements {
		fmt.Fprintf(w, "  %s = %s\n", m.Name, sideValue(m.Value, m.Unavailable))
	}
}

func renderJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// RenderMarkdown writes the report as a markdown document, suitable both
// for raw output and for terminal rendering.
func RenderMarkdown(w io.Writer, rep *Report) error {
	fmt.Fprintf(w, "# Benchmark comparison: %s vs %s\n\n", rep.BeforeLabel, rep.AfterLabel)
	fmt.Fprintf(w, "Regression threshold: %.1f%%\n\n", rep.Threshold)

	fmt.Fprintln(w, "| Metric | Before | After | Delta % | Status |")
	fmt.Fprintln(w, "|---|---|---|---|---|")
	for _, row := range rep.Rows {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			row.Name, sideValue(row.Before, row.BeforeUnavailable),
			sideValue(row.After, row.AfterUnavailable), deltaValue(row), row.Status)
	}

	if len(rep.BeforeOnly) > 0 {
		fmt.Fprintf(w, "\n## Only in %s\n\n", rep.BeforeLabel)
		for _, m := range rep.BeforeOnly {
			fmt.Fprintf(w, "- %s = %s\n", m.Name, sideValue(m.Value, m.Unavailable))
		}
	}
	if len(rep.AfterOnly) > 0 {
		fmt.Fprintf(w, "\n## Only in %s\n\n", rep.AfterLabel)
		for _, m := range rep.AfterOnly {
			fmt.Fprintf(w, "- %s = %s\n", m.Name, sideValue(m.Value, m.Unavailable))
		}
	}
	return nil
}

func renderCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"metric", "before", "after", "percent_delta", "status", "bucket"}); err != nil {
		return err
	}
	for _, row := range rep.Rows {
		rec := []string{
			row.Name,
			sideValue(row.Before, row.BeforeUnavailable),
			sideValue(row.After, row.AfterUnavailable),
			deltaValue(row),
			string(row.Status),
			"common",
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	for _, m := range rep.BeforeOnly {
		if err := cw.Write([]string{m.Name, sideValue(m.Value, m.Unavailable), "", "", "", "before_only"}); err != nil {
			return err
		}
	}
	for _, m := range rep.AfterOnly {
		if err := cw.Write([]string{m.Name, "", sideValue(m.Value, m.Unavailable), "", "", "after_only"}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sideValue(value float64, unavailable bool) string {
	if unavailable {
		return "N/A"
	}
	return trimFloat(value)
}

func deltaValue(row Row) string {
	if !row.Computable {
		if !row.BeforeUnavailable && !row.AfterUnavailable && row.Before == 0 {
			return "n/a (zero baseline)"
		}
		return "N/A"
	}
	return fmt.Sprintf("%+.1f%%", row.PercentDelta)
}

// trimFloat renders values without trailing zero noise so tables stay
// readable across magnitudes.
func trimFloat(value float64) string {
	s := strconv.FormatFloat(value, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
