package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// testConfigFile is passed as --config by execute. Defining the persistent flag
// resets configFile, so the path cannot be stored there before the command is built.
var testConfigFile string

// setConfigFile makes execute run commands against cfgPath and registers a cleanup to restore it.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	t.Setenv("DB_URL", "")
	t.Setenv("QUIZDRILL_QUESTIONS_PATH", "")
	oldConfigFile := testConfigFile
	testConfigFile = cfgPath
	t.Cleanup(func() { testConfigFile = oldConfigFile })
}

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	return cfgPath
}

// execute runs cmd with args and stdin, returning what it printed.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	if testConfigFile != "" {
		args = append(args, "--config", testConfigFile)
	}
	var stdout bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	err := cmd.Execute()
	return stdout.String(), err
}
