package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	zl, err := NewLogger(&Config{
		Level:                LevelInfo,
		DisableConsoleOutput: true,
		Logger:               lumberjack.Logger{Filename: path},
	})
	require.NoError(t, err)

	log := ForZap(zl)
	log.WithField("operator", "s3_upload_file_mapper").Info("uploaded")
	log.Debug("dropped at info level")
	require.NoError(t, zl.Sync())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg":"uploaded"`)
	assert.Contains(t, lines[0], `"operator":"s3_upload_file_mapper"`)
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	_, err := NewLogger(&Config{Level: "LOUD"})
	assert.Error(t, err)

	_, err = NewLogger(&Config{DisableConsoleOutput: true})
	assert.Error(t, err, "no sink at all")
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	assert.Same(t, log, log.WithField("k", "v"))
	assert.NotPanics(t, func() {
		log.WithError(assert.AnError).Fatalf("still alive %d", 1)
	})
}
