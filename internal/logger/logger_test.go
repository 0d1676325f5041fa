package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "info level by default", debug: false, wantDebug: false},
		{name: "debug mode", debug: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Options{Debug: tt.debug, Console: &buf})

			log.Debug("debug message")
			log.Info("info message", zap.String("key", "value"))
			require.NoError(t, log.Sync())

			output := buf.String()
			assert.Contains(t, output, "info message")
			assert.Contains(t, output, "value")
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug message")))
		})
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quizdrill.log")
	var buf bytes.Buffer
	log := New(Options{File: path, Console: &buf})

	log.Info("written to file", zap.Int("questions", 3))
	_ = log.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"written to file"`)
	assert.Contains(t, string(content), `"questions":3`)
}
