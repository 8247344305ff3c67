package main

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownCommandFails(t *testing.T) {
	setupTestEnv(t)

	_, err := executeCommand(rootCmd, "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestExecuteExitContract(t *testing.T) {
	setupTestEnv(t)

	resetFlags(rootCmd)

	var exitCode int
	oldExit := exit
	exit = func(code int) { exitCode = code }
	defer func() { exit = oldExit }()

	// Capture the final error line Execute writes to the real stderr.
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w
	defer func() { os.Stderr = oldStderr }()

	rootCmd.SetArgs([]string{"compare", "nope-a", "nope-b"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	Execute()

	w.Close()
	os.Stderr = oldStderr
	captured, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, 1, exitCode)
	assert.True(t, strings.HasPrefix(string(captured), "Error [record_not_found]:"),
		"unexpected stderr: %q", string(captured))
}

func TestHelpListsCommands(t *testing.T) {
	setupTestEnv(t)

	output, err := executeCommand(rootCmd, "--help")
	require.NoError(t, err)
	for _, name := range []string{"run", "compare", "report", "list", "prune", "probes", "status", "cleanup", "configure"} {
		assert.Contains(t, output, name)
	}
}
