package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_DisabledWritesNothing(t *testing.T) {
	t.Setenv("AISPEND_DEBUG", "")
	t.Setenv("AISPEND_DEBUG_FILE", "")

	path, err := Initialize(false, "", 10)

	require.NoError(t, err)
	assert.Empty(t, path)
	require.NotNil(t, Logger)
	Logger.Debug("goes nowhere")
}

func TestInitialize_CustomDebugFile(t *testing.T) {
	t.Setenv("AISPEND_DEBUG", "")
	logFile := filepath.Join(t.TempDir(), "nested", "debug.log")

	path, err := Initialize(true, logFile, 10)

	require.NoError(t, err)
	assert.Equal(t, logFile, path)

	Logger.Info("hello from test")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from test")
}

func TestInitialize_EnvEnablesDebug(t *testing.T) {
	t.Setenv("AISPEND_DEBUG", "1")
	logFile := filepath.Join(t.TempDir(), "env.log")
	t.Setenv("AISPEND_DEBUG_FILE", logFile)

	path, err := Initialize(false, "", 10)

	require.NoError(t, err)
	assert.Equal(t, logFile, path)
}

func TestRotateLogs_KeepsNewestFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.log", "b.log", "c.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	require.NoError(t, rotateLogs(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	// Room is made for the upcoming log file
	assert.Len(t, entries, 1)
}
