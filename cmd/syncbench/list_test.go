package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncbench/internal/record"
)

func TestListEmptyStore(t *testing.T) {
	setupTestEnv(t)

	output, err := executeCommand(rootCmd, "list")
	require.NoError(t, err)
	assert.Contains(t, output, "No runs recorded.")
}

func TestListShowsRunsNewestFirst(t *testing.T) {
	setupTestEnv(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	seedRecord(t, base, "baseline",
		record.Measurement{Name: "sync_seconds", Value: 120})
	seedRecord(t, base.Add(time.Hour), "tuned",
		record.Measurement{Name: "sync_seconds", Value: 40})

	output, err := executeCommand(rootCmd, "list")
	require.NoError(t, err)

	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "LABEL")
	assert.Contains(t, output, "baseline")
	assert.Contains(t, output, "tuned")
	assert.True(t, strings.Index(output, "tuned") < strings.Index(output, "baseline"),
		"newer run should be listed first:\n%s", output)
}

func TestListFiltersByLabel(t *testing.T) {
	setupTestEnv(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	seedRecord(t, base, "baseline",
		record.Measurement{Name: "sync_seconds", Value: 120})
	seedRecord(t, base.Add(time.Hour), "tuned",
		record.Measurement{Name: "sync_seconds", Value: 40})

	output, err := executeCommand(rootCmd, "list", "baseline")
	require.NoError(t, err)
	assert.Contains(t, output, "baseline")
	assert.NotContains(t, output, "tuned")
}
