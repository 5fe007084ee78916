package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restore(t *testing.T) {
	t.Helper()
	prev := L
	t.Cleanup(func() { L = prev })
}

func TestInitDisabledDiscards(t *testing.T) {
	restore(t)
	closeFn, err := Init(Options{})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.False(t, L.Enabled(context.Background(), slog.LevelError))
}

func TestInitStderrText(t *testing.T) {
	restore(t)
	var buf bytes.Buffer
	_, err := Init(Options{Enabled: true, Level: slog.LevelWarn, Stderr: &buf})
	require.NoError(t, err)

	Info("hidden")
	Warn("shown", "record", "AKM")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "record=AKM")
}

func TestInitFileJSON(t *testing.T) {
	restore(t)
	path := filepath.Join(t.TempDir(), "logs", "typesmith.log")
	closeFn, err := Init(Options{Enabled: true, Path: path, Level: slog.LevelDebug})
	require.NoError(t, err)

	Debug("loaded", "records", 3)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.EqualValues(t, 3, entry["records"])
}

func TestInitDirectoryUsesDatedFile(t *testing.T) {
	restore(t)
	dir := t.TempDir()
	old := filepath.Join(dir, logPrefix+"2000-01-01"+logSuffix)
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	keep := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))

	closeFn, err := Init(Options{Enabled: true, Path: dir})
	require.NoError(t, err)
	Info("hello")
	require.NoError(t, closeFn())

	assert.NoFileExists(t, old)
	assert.FileExists(t, keep)
	assert.FileExists(t, filepath.Join(dir, logPrefix+time.Now().Format(time.DateOnly)+logSuffix))
}

func TestOr(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, custom, Or(custom))
	assert.Same(t, L, Or(nil))
}
