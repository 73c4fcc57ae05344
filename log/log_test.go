package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrapetree.log")
	logger, closer := New(zapcore.InfoLevel, path)

	logger.Debug("hidden")
	logger.Named("fetch").Info("fetch", zap.String("url", "http://example.org/"))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "fetch", entry["logger"])
	assert.Equal(t, "http://example.org/", entry["url"])
	assert.Contains(t, entry, "caller")
}

func TestNewWithoutFile(t *testing.T) {
	logger, closer := New(zapcore.WarnLevel, "")
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
	assert.NoError(t, closer.Close())
}
