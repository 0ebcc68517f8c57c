package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "dashboard "+version)
	assert.Contains(t, out, "commit: "+commit)
}

func TestConfigCommand_PrintsEffectiveConfig(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("AUTH_SESSION_SECRET", "do-not-print")
	t.Setenv("PROBE_CONCURRENCY", "2")

	out := execute(t, "config")
	assert.Contains(t, out, "driver: memory")
	assert.Contains(t, out, "concurrency: 2")
	assert.NotContains(t, out, "do-not-print")
}

func TestMigrateCommand_RejectsMemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"migrate"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	assert.Error(t, rootCmd.Execute())
}
