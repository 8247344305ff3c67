package main

import (
	"context"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncbench/internal/controlplane"
)

func mockAskOne(t *testing.T, confirm bool) {
	t.Helper()
	original := askOneFunc
	askOneFunc = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		if b, ok := response.(*bool); ok {
			*b = confirm
		}
		return nil
	}
	t.Cleanup(func() { askOneFunc = original })
}

func seedCleanupWorkloads(t *testing.T, cp *controlplane.Fake, label string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, cp.Create(context.Background(), controlplane.Spec{
			Name:   "bench-" + label + "-" + string(rune('0'+i)),
			Labels: controlplane.ManagedLabels(label),
		}))
	}
}

func TestCleanupDeletesAfterConfirmation(t *testing.T) {
	setupTestEnv(t)
	mockAskOne(t, true)

	cp := controlplane.NewFake()
	seedCleanupWorkloads(t, cp, "baseline", 2)
	withControlPlane(t, cp)

	output, err := executeCommand(rootCmd, "cleanup", "baseline")
	require.NoError(t, err)
	assert.Contains(t, output, `Deleted 2 workload(s) for label "baseline"`)

	statuses, err := cp.List(context.Background(), controlplane.Selector("baseline"))
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestCleanupAbortedByUser(t *testing.T) {
	setupTestEnv(t)
	mockAskOne(t, false)

	cp := controlplane.NewFake()
	seedCleanupWorkloads(t, cp, "baseline", 2)
	withControlPlane(t, cp)

	output, err := executeCommand(rootCmd, "cleanup", "baseline")
	require.NoError(t, err)
	assert.Contains(t, output, "Aborted.")

	statuses, err := cp.List(context.Background(), controlplane.Selector("baseline"))
	require.NoError(t, err)
	assert.Len(t, statuses, 2)
}

func TestCleanupYesSkipsPrompt(t *testing.T) {
	setupTestEnv(t)

	// No askOneFunc mock: a prompt here would make the test hang or fail.
	cp := controlplane.NewFake()
	seedCleanupWorkloads(t, cp, "baseline", 1)
	withControlPlane(t, cp)

	output, err := executeCommand(rootCmd, "cleanup", "baseline", "--yes")
	require.NoError(t, err)
	assert.Contains(t, output, `Deleted 1 workload(s)`)
}

func TestCleanupNothingToDelete(t *testing.T) {
	setupTestEnv(t)
	withControlPlane(t, controlplane.NewFake())

	output, err := executeCommand(rootCmd, "cleanup", "baseline")
	require.NoError(t, err)
	assert.Contains(t, output, `No workloads found for label "baseline"`)
}

func TestCleanupScopedToLabel(t *testing.T) {
	setupTestEnv(t)
	mockAskOne(t, true)

	cp := controlplane.NewFake()
	seedCleanupWorkloads(t, cp, "baseline", 1)
	seedCleanupWorkloads(t, cp, "tuned", 1)
	withControlPlane(t, cp)

	_, err := executeCommand(rootCmd, "cleanup", "baseline")
	require.NoError(t, err)

	statuses, err := cp.List(context.Background(), controlplane.Selector("tuned"))
	require.NoError(t, err)
	assert.Len(t, statuses, 1)
}
