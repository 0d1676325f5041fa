package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/quizdrill/internal/statistics"
)

func TestFormatFlag_Set(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    FormatFlag
		wantErr bool
	}{
		{name: "text", value: "text", want: FormatText},
		{name: "json", value: "json", want: FormatJSON},
		{name: "yaml", value: "yaml", want: FormatYAML},
		{name: "unknown", value: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FormatFlag
			err := f.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.value, f.String())
		})
	}
}

func TestWriteStats(t *testing.T) {
	progress := statistics.Progress{Total: 4, Attempted: 2, Correct: 1, Wrong: 1}
	periods := []statistics.PeriodStatistics{{Period: "2026-10", Correct: 1, Wrong: 1}}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeStats(&buf, FormatText, progress, periods))
		assert.Equal(t, "Questions: 4, attempted: 2, accuracy: 50.0%\n"+
			"Correct: 1, wrong: 1, completion: 50%\n"+
			"2026-10: 1 correct, 1 wrong\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeStats(&buf, FormatJSON, progress, periods))

		var got statsReport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, 2, got.Attempted)
		assert.Equal(t, 50.0, got.Accuracy)
		assert.Equal(t, []periodReport{{Period: "2026-10", Correct: 1, Wrong: 1}}, got.Periods)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeStats(&buf, FormatYAML, progress, nil))

		var got statsReport
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, 4, got.Total)
		assert.Equal(t, 0.5, got.Completion)
		assert.Empty(t, got.Periods)
	})
}
