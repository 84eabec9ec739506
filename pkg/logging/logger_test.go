package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDir points the package at a temporary log directory and resets
// global state.
func setupTestDir(t *testing.T) {
	t.Helper()

	origLogDir, origInitErr, origID := logDir, initErr, processID
	origLevel := Level(level.Load())

	logDir = t.TempDir()
	initErr = nil
	initOnce = sync.Once{}
	processID = ""
	processIDOnce = sync.Once{}
	SetLevel(LevelDebug)

	t.Cleanup(func() {
		logDir, initErr, processID = origLogDir, origInitErr, origID
		initOnce = sync.Once{}
		processIDOnce = sync.Once{}
		SetLevel(origLevel)
	})
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	return string(content)
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test-component")
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, "test-component", logger.component)
	assert.FileExists(t, logger.LogPath())
	assert.Equal(t, logDir, filepath.Dir(logger.LogPath()))
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("bookmarks")
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("Debug message")
	logger.Infof("Loaded %d bookmarks", 12)
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content := readLog(t, logger)
	for _, want := range []string{
		"[bookmarks] [DEBUG] Debug message",
		"[bookmarks] [INFO] Loaded 12 bookmarks",
		"[bookmarks] [WARN] Warning message",
		"[bookmarks] [ERROR] Error message",
	} {
		assert.Contains(t, content, want)
	}
}

func TestSetLevelFilters(t *testing.T) {
	setupTestDir(t)
	SetLevel(LevelWarn)

	logger, err := NewLogger("session")
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("tab opened")
	logger.Infof("tab switched")
	logger.Warnf("surface slow")
	logger.Errorf("surface died")

	content := readLog(t, logger)
	assert.NotContains(t, content, "tab opened")
	assert.NotContains(t, content, "tab switched")
	assert.Contains(t, content, "[WARN] surface slow")
	assert.Contains(t, content, "[ERROR] surface died")
}

func TestMultipleComponentsShareFile(t *testing.T) {
	setupTestDir(t)

	session, err := NewLogger("session")
	require.NoError(t, err)
	defer session.Close()

	history, err := NewLogger("history")
	require.NoError(t, err)
	defer history.Close()

	require.Equal(t, session.LogPath(), history.LogPath())

	session.Infof("tab opened")
	history.Infof("visit recorded")

	content := readLog(t, session)
	assert.Contains(t, content, "[session]")
	assert.Contains(t, content, "[history]")
}

func TestDiscard(t *testing.T) {
	setupTestDir(t)

	logger := Discard("quiet")
	logger.Errorf("nobody hears this")

	assert.Empty(t, logger.LogPath())
	assert.NoError(t, logger.Close())

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "Discard must not create files")
}

func TestSetDirectory(t *testing.T) {
	setupTestDir(t)
	logDir = ""

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	SetDirectory(dir)
	SetDirectory(filepath.Join(t.TempDir(), "ignored"))

	logger, err := NewLogger("app")
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, dir, filepath.Dir(logger.LogPath()))
	assert.DirExists(t, dir)
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)

	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close(), "second close is a no-op")
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	require.True(t, strings.HasSuffix(fileName, "-thazh.log"), fileName)
	assert.Len(t, strings.TrimSuffix(fileName, "-thazh.log"), 36, "process id is a uuid")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "LEVEL(9)", Level(9).String())
}
