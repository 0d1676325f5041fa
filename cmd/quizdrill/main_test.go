package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/quizdrill/internal/session"
	"github.com/at-ishikawa/quizdrill/internal/testutil"
)

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "quizdrill", cmd.Use)
	for _, name := range []string{"quiz", "stats", "reset", "validate"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
}

func TestCommands_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "quiz", args: []string{"quiz"}},
		{name: "stats", args: []string{"stats", "--user", session.NewToken()}},
		{name: "reset", args: []string{"reset", "--user", session.NewToken()}},
		{name: "validate", args: []string{"validate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setConfigFile(t, setupBrokenConfigFile(t))

			_, err := execute(t, newRootCommand(), "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration")
		})
	}
}

func TestQuizCommand_RoundTrip(t *testing.T) {
	setConfigFile(t, testutil.SetupTestConfig(t, t.TempDir()))
	user := session.NewToken()

	output, err := execute(t, newRootCommand(), "1\n1\n", "quiz", "--count", "2", "--user", user)
	require.NoError(t, err)
	assert.Contains(t, output, "[1/2]")
	assert.Contains(t, output, "[2/2]")
	assert.Contains(t, output, "Score: ")
	assert.NotContains(t, output, "Session: ")

	output, err = execute(t, newRootCommand(), "", "stats", "--user", user)
	require.NoError(t, err)
	assert.Contains(t, output, "Questions: 3, attempted: 2")

	// Only one question is left unseen
	output, err = execute(t, newRootCommand(), "\n", "quiz", "--user", user)
	require.NoError(t, err)
	assert.Contains(t, output, "[1/1]")

	output, err = execute(t, newRootCommand(), "", "quiz", "--user", user)
	require.NoError(t, err)
	assert.Contains(t, output, "All questions have been attempted")

	output, err = execute(t, newRootCommand(), "", "reset", "--user", user)
	require.NoError(t, err)
	assert.Contains(t, output, "Progress reset.")

	output, err = execute(t, newRootCommand(), "", "stats", "--user", user)
	require.NoError(t, err)
	assert.Contains(t, output, "attempted: 0")
}

func TestQuizCommand_NewSession(t *testing.T) {
	setConfigFile(t, testutil.SetupTestConfig(t, t.TempDir()))
	t.Setenv("QUIZDRILL_USER", "")

	output, err := execute(t, newRootCommand(), "q\n", "quiz", "--count", "1")
	require.NoError(t, err)
	assert.Contains(t, output, "Session: ")
	assert.Contains(t, output, "Quit without saving.")
}

func TestQuizCommand_InvalidCount(t *testing.T) {
	setConfigFile(t, testutil.SetupTestConfig(t, t.TempDir()))

	_, err := execute(t, newRootCommand(), "", "quiz", "--count", "101", "--user", session.NewToken())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--count must be between 1 and 100")
}

func TestResetCommand_RequiresUser(t *testing.T) {
	t.Setenv("QUIZDRILL_USER", "")

	_, err := execute(t, newRootCommand(), "", "reset")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user is required")
}

func TestResetCommand_UserFromEnvironment(t *testing.T) {
	setConfigFile(t, testutil.SetupTestConfig(t, t.TempDir()))
	user := session.NewToken()
	t.Setenv("QUIZDRILL_USER", user)

	_, err := execute(t, newRootCommand(), "1\n", "quiz", "--count", "1")
	require.NoError(t, err)
	output, err := execute(t, newRootCommand(), "", "stats")
	require.NoError(t, err)
	assert.Contains(t, output, "attempted: 1")

	output, err = execute(t, newRootCommand(), "", "reset")
	require.NoError(t, err)
	assert.Contains(t, output, "Progress reset.")

	output, err = execute(t, newRootCommand(), "", "stats")
	require.NoError(t, err)
	assert.Contains(t, output, "attempted: 0")
}

func TestCommands_RejectMalformedUser(t *testing.T) {
	tests := []struct {
		name string
		user string
	}{
		{name: "not a token", user: "u"},
		{name: "longer than any schema stores", user: strings.Repeat("a", 70)},
	}

	for _, tt := range tests {
		for _, command := range []string{"quiz", "stats", "reset"} {
			t.Run(tt.name+"/"+command, func(t *testing.T) {
				setConfigFile(t, testutil.SetupTestConfig(t, t.TempDir()))

				_, err := execute(t, newRootCommand(), "", command, "--user", tt.user)
				require.Error(t, err)
				assert.Contains(t, err.Error(), "is not a session token")
			})
		}
	}
}

func TestExecute_UsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, dir))

	output, err := execute(t, newRootCommand(), "", "validate")
	require.NoError(t, err)
	assert.Contains(t, output, "3 records, 3 valid questions")

	_, err = execute(t, newRootCommand(), "1\n", "quiz", "--count", "1", "--user", session.NewToken())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "data", "quiz.db"))
	assert.NoFileExists(t, "quiz.db")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.json")
	testutil.WriteQuestionBank(t, valid, testutil.DefaultRecords)

	mixed := filepath.Join(dir, "mixed.json")
	content, err := json.Marshal([]any{
		map[string]any{"id": 1, "question": "q", "options": []string{"a", "b"}, "answer": 0},
		map[string]any{"id": 1, "question": "dup", "options": []string{"a", "b"}, "answer": 0},
		map[string]any{"id": "x", "question": "q", "options": []string{"a", "b"}, "answer": 0},
		map[string]any{"question": "no id"},
		map[string]any{"id": 5, "question": "q", "options": []string{"a"}, "answer": 0},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(mixed, content, 0644))

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"id": 1}`), 0644))

	tests := []struct {
		name       string
		path       string
		wantOutput []string
		wantErr    string
	}{
		{
			name:       "valid bank",
			path:       valid,
			wantOutput: []string{"3 records, 3 valid questions, 0 reported, 0 dropped silently"},
		},
		{
			name: "reported and silent skips",
			path: mixed,
			wantOutput: []string{
				"warning: record 3: id is not an integer, skipped",
				"warning: record 4: missing required keys, skipped",
				"5 records, 1 valid questions, 2 reported, 2 dropped silently",
			},
		},
		{
			name:    "not a list",
			path:    invalid,
			wantErr: "no question data",
		},
		{
			name:    "missing file",
			path:    filepath.Join(dir, "missing.json"),
			wantErr: "does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, newRootCommand(), "", "validate", tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantOutput {
				assert.Contains(t, output, want)
			}
		})
	}
}
