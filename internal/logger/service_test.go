package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_WritesJSONWithFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := &Config{Level: DebugLevel, Format: "json", Service: "festival"}
	cfg.File.Enabled = true
	cfg.File.Path = path

	log, err := NewLogger(cfg)
	require.NoError(t, err)

	scoped := log.WithRequestID("req-1").WithFields(map[string]interface{}{"step": 2})
	scoped.LogInfo("draft advanced", map[string]interface{}{"field": "titleEN"})
	returned := scoped.LogError(errors.New("boom"), "probe failed")
	assert.EqualError(t, returned, "boom")

	entries := readEntries(t, path)
	require.Len(t, entries, 2)

	assert.Equal(t, "draft advanced", entries[0]["msg"])
	assert.Equal(t, "req-1", entries[0]["requestID"])
	assert.Equal(t, float64(2), entries[0]["step"])
	assert.Equal(t, "titleEN", entries[0]["field"])
	assert.Equal(t, "festival", entries[0]["service"])

	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestWithFields_DoesNotLeakIntoParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := &Config{Level: InfoLevel, Format: "json"}
	cfg.File.Enabled = true
	cfg.File.Path = path

	log, err := NewLogger(cfg)
	require.NoError(t, err)

	_ = log.WithFields(map[string]interface{}{"requestID": "child"})
	log.LogInfo("parent entry", nil)

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	_, ok := entries[0]["requestID"]
	assert.False(t, ok)
}
