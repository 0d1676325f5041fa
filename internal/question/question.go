// Package question loads multiple-choice questions from a loosely structured bank
// and normalizes them into an immutable catalog.
package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNoData means the bank is missing, unparseable, not a list or empty.
// No operation is meaningful without a catalog.
var ErrNoData = errors.New("no question data")

var requiredKeys = []string{"id", "question", "options", "answer"}

// Question is one normalized multiple-choice question.
type Question struct {
	// ID is "Q" followed by the zero-padded numeric id, e.g. Q0007
	ID      string   `json:"id" yaml:"id"`
	Text    string   `json:"question" yaml:"question"`
	Choices []string `json:"choices" yaml:"choices"`
	// Answer is the text of the correct choice, not its index
	Answer      string `json:"answer" yaml:"answer"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Warning reports a record that was skipped and should be shown to the user.
// Duplicate ids and structural problems in options/answer are skipped without one.
type Warning struct {
	// Position is the 1-based position of the record in the bank
	Position int
	Reason   string
}

func (w Warning) String() string {
	return fmt.Sprintf("record %d: %s, skipped", w.Position, w.Reason)
}

// FormatID returns the canonical id of a numeric question id.
func FormatID(id int64) string {
	return fmt.Sprintf("Q%04d", id)
}

// Normalize validates raw records in order and returns the surviving questions
// in input order together with the warnings of reported skips.
// raw must be a non-empty list, otherwise ErrNoData is returned.
func Normalize(raw any) ([]Question, []Warning, error) {
	records, ok := raw.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("%w: the bank must be a list, got %T", ErrNoData, raw)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: the bank is an empty list", ErrNoData)
	}

	questions := make([]Question, 0, len(records))
	var warnings []Warning
	seen := make(map[int64]struct{}, len(records))

	for i, r := range records {
		position := i + 1

		record, ok := asRecord(r)
		if !ok || !hasKeys(record, requiredKeys) {
			warnings = append(warnings, Warning{Position: position, Reason: "missing required keys"})
			continue
		}

		id, ok := toInt(record["id"])
		if !ok {
			warnings = append(warnings, Warning{Position: position, Reason: "id is not an integer"})
			continue
		}

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		options, ok := record["options"].([]any)
		if !ok || len(options) < 2 {
			continue
		}
		answerIndex, ok := toIndex(record["answer"])
		if !ok || answerIndex < 0 || answerIndex >= int64(len(options)) {
			continue
		}

		choices := make([]string, len(options))
		for j, o := range options {
			choices[j] = stringify(o)
		}

		questions = append(questions, Question{
			ID:          FormatID(id),
			Text:        stringify(record["question"]),
			Choices:     choices,
			Answer:      choices[answerIndex],
			Explanation: explanation(record),
		})
	}

	return questions, warnings, nil
}

func asRecord(v any) (map[string]any, bool) {
	switch r := v.(type) {
	case map[string]any:
		return r, true
	case map[any]any:
		converted := make(map[string]any, len(r))
		for key, value := range r {
			converted[fmt.Sprint(key)] = value
		}
		return converted, true
	default:
		return nil, false
	}
}

func hasKeys(record map[string]any, keys []string) bool {
	for _, key := range keys {
		if _, ok := record[key]; !ok {
			return false
		}
	}
	return true
}

// explanation prefers the legacy "explain" key over "explanation".
func explanation(record map[string]any) string {
	if v, ok := record["explain"]; ok {
		return stringify(v)
	}
	return stringify(record["explanation"])
}

// toInt coerces an id. Fractions are truncated toward zero and numeric strings
// are parsed after trimming spaces. Booleans are rejected.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		return truncate(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// toIndex accepts integers only; 1.0 or "1" are not indexes.
func toIndex(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func truncate(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}
