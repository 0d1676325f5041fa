// Package testutil provides shared test helpers for creating config files and question banks.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Record is one raw question bank entry as users write it.
type Record struct {
	ID          int      `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// DefaultRecords is a small well-formed bank.
var DefaultRecords = []Record{
	{ID: 1, Question: "Capital of France?", Options: []string{"Paris", "Lyon", "Nice"}, Answer: 0, Explanation: "Paris is the capital."},
	{ID: 2, Question: "2 + 2?", Options: []string{"3", "4"}, Answer: 1},
	{ID: 3, Question: "Largest planet?", Options: []string{"Mars", "Jupiter"}, Answer: 1},
}

// WriteQuestionBank writes records as a JSON bank at path.
func WriteQuestionBank(t *testing.T, path string, records []Record) {
	t.Helper()

	content, err := json.MarshalIndent(records, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
}

// SetupTestConfig creates a config file pointing to a question bank and an
// SQLite file inside tmpDir, and writes DefaultRecords as the bank.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	questionsPath := filepath.Join(tmpDir, "questions.json")
	WriteQuestionBank(t, questionsPath, DefaultRecords)

	configContent := fmt.Sprintf(`questions:
  path: %s
database:
  sqlite_path: %s
  secrets_file: %s
quiz:
  default_count: 10
  max_count: 100
`,
		questionsPath,
		filepath.Join(tmpDir, "data", "quiz.db"),
		filepath.Join(tmpDir, "secrets.toml"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}
