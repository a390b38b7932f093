package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuild_ConsoleLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, closeFn, err := Build(Options{Level: "warn", Console: &buf})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("rates_fetch_failed", zap.String("base", "EUR"))
	require.NoError(t, closeFn())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "rates_fetch_failed")
	assert.Contains(t, out, `"base": "EUR"`)
}

func TestBuild_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "poscalc.log")
	var buf bytes.Buffer

	log, closeFn, err := Build(Options{Level: "debug", File: path, Console: &buf})
	require.NoError(t, err)

	log.Debug("calculated", zap.Float64("units", 22000))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "calculated", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, 22000.0, entry["units"])
	assert.Contains(t, entry, "ts")
}

func TestBuild_BadLevel(t *testing.T) {
	t.Parallel()

	_, _, err := Build(Options{Level: "chatty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}
