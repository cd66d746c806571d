package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidcrop.log")
	var out bytes.Buffer
	logger := NewLogger(&out, slog.LevelInfo, path)
	logger.Info("hello", "k", 1)
	logger.Debug("hidden")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, byte('\n'), data[len(data)-1], "records are newline terminated")
	assert.Equal(t, string(data), out.String())
	assert.NotContains(t, out.String(), "hidden")
}

func TestNewLogger_WritesJSONToGivenWriter(t *testing.T) {
	var out bytes.Buffer
	NewLogger(&out, slog.LevelDebug, "").Debug("frame decoded", "index", 7)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "frame decoded", rec["msg"])
	assert.Equal(t, float64(7), rec["index"])
}
