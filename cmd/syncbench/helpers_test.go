package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"syncbench/internal/controlplane"
	"syncbench/internal/record"
	"syncbench/internal/store"
)

// executeCommand executes a cobra command and returns its combined output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	resetFlags(root)
	// Mock exit
	oldExit := exit
	exit = func(code int) {
		if code != 0 {
			panic(fmt.Sprintf("exit-%d", code))
		}
	}
	defer func() { exit = oldExit }()
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "exit-") {
				// This is an expected exit, don't re-panic
				return
			}
			panic(r) // Re-panic actual panics
		}
	}()
	root.SetArgs(args)
	b := new(bytes.Buffer)
	root.SetOut(b)
	root.SetErr(b)
	// Mock Stdin to avoid hanging on interactive prompts
	root.SetIn(bytes.NewBufferString(""))
	err := root.Execute()
	return b.String(), err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setupTestEnv isolates the global viper state and points the harness at a
// fast fake control plane and a throwaway sqlite database. Returns the
// temp directory the test runs in.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	viper.Reset()
	t.Cleanup(viper.Reset)

	// Re-establish the persistent flag bindings viper.Reset discarded.
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("mock", rootCmd.PersistentFlags().Lookup("mock"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	viper.Set("controlplane.type", "fake")
	viper.Set("store.type", "sqlite")
	viper.Set("store.dsn", filepath.Join(dir, "test.db"))
	viper.Set("scenario.count", 3)
	viper.Set("scenario.timeout", "5s")
	viper.Set("scenario.poll_interval", "2ms")
	viper.Set("scenario.parallelism", 2)

	return dir
}

// withControlPlane substitutes the control-plane factory for the duration
// of one test.
func withControlPlane(t *testing.T, cp controlplane.Interface) {
	t.Helper()
	original := newControlPlane
	newControlPlane = func(controlplane.Config) (controlplane.Interface, error) {
		return cp, nil
	}
	t.Cleanup(func() { newControlPlane = original })
}

// seedRecord stores a completed run for label with the given measurements.
func seedRecord(t *testing.T, startedAt time.Time, label string, measurements ...record.Measurement) {
	t.Helper()
	rec := record.New(label, startedAt)
	rec.Measurements = measurements
	rec.Completed = 3
	rec.Total = 3
	st := openTestStore(t)
	if err := st.Put(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
}

// openTestStore opens the store the commands under test write to.
func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.New(store.Config{Type: "sqlite", DSN: viper.GetString("store.dsn")})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
