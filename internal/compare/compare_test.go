package compare

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncbench/internal/errdefs"
	"syncbench/internal/record"
)

func testRecord(label string, measurements ...record.Measurement) *record.RunRecord {
	rec := record.New(label, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	rec.Measurements = measurements
	return rec
}

func TestCompareSyncSecondsImprovement(t *testing.T) {
	before := testRecord("baseline", record.Measurement{Name: "sync_seconds", Value: 120, Unit: "s"})
	after := testRecord("tuned", record.Measurement{Name: "sync_seconds", Value: 40, Unit: "s"})

	rep, err := Compare(before, after, 10)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)

	row := rep.Rows[0]
	assert.True(t, row.Computable)
	assert.InDelta(t, 66.7, row.PercentDelta, 0.05)
	assert.Equal(t, StatusImproved, row.Status)
}

func TestCompareZeroBaselineIsNotComputable(t *testing.T) {
	before := testRecord("baseline", record.Measurement{Name: "errors_total", Value: 0})
	after := testRecord("tuned", record.Measurement{Name: "errors_total", Value: 5})

	rep, err := Compare(before, after, 10)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)

	assert.False(t, rep.Rows[0].Computable)
	assert.Equal(t, StatusNotComparable, rep.Rows[0].Status)
	assert.Zero(t, rep.Rows[0].PercentDelta)
}

func TestCompareUnavailableSideIsNotComparable(t *testing.T) {
	before := testRecord("baseline", record.Measurement{Name: "cpu_cores", Unavailable: true})
	after := testRecord("tuned", record.Measurement{Name: "cpu_cores", Value: 2})

	rep, err := Compare(before, after, 10)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.False(t, rep.Rows[0].Computable)
	assert.Equal(t, StatusNotComparable, rep.Rows[0].Status)
}

func TestCompareOnlyBuckets(t *testing.T) {
	before := testRecord("baseline",
		record.Measurement{Name: "shared", Value: 10},
		record.Measurement{Name: "baseline_extra", Value: 1},
	)
	after := testRecord("tuned",
		record.Measurement{Name: "shared", Value: 9},
		record.Measurement{Name: "tuned_extra", Value: 2},
	)

	rep, err := Compare(before, after, 10)
	require.NoError(t, err)

	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "shared", rep.Rows[0].Name)
	require.Len(t, rep.BeforeOnly, 1)
	assert.Equal(t, "baseline_extra", rep.BeforeOnly[0].Name)
	require.Len(t, rep.AfterOnly, 1)
	assert.Equal(t, "tuned_extra", rep.AfterOnly[0].Name)
}

func TestCompareRegressionDetection(t *testing.T) {
	before := testRecord("baseline",
		record.Measurement{Name: "converge_stable", Value: 100},
		record.Measurement{Name: "converge_worse", Value: 100},
	)
	after := testRecord("tuned",
		record.Measurement{Name: "converge_stable", Value: 98},
		record.Measurement{Name: "converge_worse", Value: 150},
	)

	rep, err := Compare(before, after, 10)
	require.NoError(t, err)

	byName := map[string]Row{}
	for _, row := range rep.Rows {
		byName[row.Name] = row
	}
	assert.Equal(t, StatusOK, byName["converge_stable"].Status)
	assert.Equal(t, StatusRegressed, byName["converge_worse"].Status)

	regs := rep.Regressions()
	require.Len(t, regs, 1)
	assert.Equal(t, "converge_worse", regs[0].Name)
}

func TestCompareRejectsIncompatibleSchema(t *testing.T) {
	before := testRecord("baseline", record.Measurement{Name: "x", Value: 1})
	after := testRecord("tuned", record.Measurement{Name: "x", Value: 1})
	after.SchemaVersion = 99

	_, err := Compare(before, after, 10)
	require.Error(t, err)
	assert.Equal(t, errdefs.IncompatibleSchema, errdefs.KindOf(err))
}

func TestRenderTableIsDeterministic(t *testing.T) {
	before := testRecord("baseline",
		record.Measurement{Name: "zeta", Value: 3},
		record.Measurement{Name: "alpha", Value: 120, Unit: "s"},
		record.Measurement{Name: "mid", Unavailable: true},
	)
	after := testRecord("tuned",
		record.Measurement{Name: "alpha", Value: 40, Unit: "s"},
		record.Measurement{Name: "zeta", Value: 3},
		record.Measurement{Name: "extra", Value: 1},
	)

	render := func() string {
		rep, err := Compare(before, after, 10)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, rep, "table"))
		return buf.String()
	}

	first := render()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, render(), "report output must be byte-identical across invocations")
	}

	// sorted row order
	alphaIdx := strings.Index(first, "alpha")
	zetaIdx := strings.Index(first, "zeta")
	assert.Less(t, alphaIdx, zetaIdx)
	assert.Contains(t, first, "Only in baseline")
	assert.Contains(t, first, "Only in tuned")
}

func TestRenderJSON(t *testing.T) {
	before := testRecord("baseline", record.Measurement{Name: "sync_seconds", Value: 120})
	after := testRecord("tuned", record.Measurement{Name: "sync_seconds", Value: 40})

	rep, err := Compare(before, after, 10)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rep, "json"))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "baseline", decoded.BeforeLabel)
	require.Len(t, decoded.Rows, 1)
	assert.InDelta(t, 66.7, decoded.Rows[0].PercentDelta, 0.05)
}

func TestRenderCSV(t *testing.T) {
	before := testRecord("baseline",
		record.Measurement{Name: "sync_seconds", Value: 120},
		record.Measurement{Name: "gone", Value: 7},
	)
	after := testRecord("tuned", record.Measurement{Name: "sync_seconds", Value: 40})

	rep, err := Compare(before, after, 10)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rep, "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "metric,before,after,percent_delta,status,bucket", lines[0])
	assert.Contains(t, lines[1], "sync_seconds,120,40,")
	assert.Contains(t, lines[2], "gone,7,,,,before_only")
}

func TestRenderMarkdown(t *testing.T) {
	before := testRecord("baseline", record.Measurement{Name: "sync_seconds", Value: 120, Unit: "s"})
	after := testRecord("tuned", record.Measurement{Name: "sync_seconds", Value: 40, Unit: "s"})

	rep, err := Compare(before, after, 10)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rep, "markdown"))
	out := buf.String()
	assert.Contains(t, out, "# Benchmark comparison: baseline vs tuned")
	assert.Contains(t, out, "| sync_seconds | 120 | 40 | +66.7% | improved |")
}

func TestRenderUnknownFormat(t *testing.T) {
	rep := &Report{}
	err := Render(&bytes.Buffer{}, rep, "yaml")
	assert.Error(t, err)
}
