package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/config"
)

func TestNewLogger(t *testing.T) {
	appCfg := config.AppConfig{
		Name:        "hotelbook-test",
		Environment: "test",
		Version:     "1.0.0",
	}

	t.Run("DefaultStdout", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{}, appCfg)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.Nil(t, closer)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("Stderr", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "debug", Output: "stderr"}, appCfg)
		require.NoError(t, err)
		assert.Nil(t, closer)
		assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	})

	t.Run("Console", func(t *testing.T) {
		logger, _, err := New(config.LoggingConfig{Level: "warn", Format: "console"}, appCfg)
		require.NoError(t, err)
		assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	})

	t.Run("File", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "hotelbook.log")
		logger, closer, err := New(config.LoggingConfig{Level: "error", Output: "file", FilePath: logPath}, appCfg)
		require.NoError(t, err)
		require.NotNil(t, closer)

		logger.Error().Msg("boom")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
		assert.Equal(t, "boom", entry["message"])
		assert.Equal(t, "hotelbook-test", entry["service"])
	})

	t.Run("FileMissingPath", func(t *testing.T) {
		_, _, err := New(config.LoggingConfig{Output: "file"}, appCfg)
		assert.Error(t, err)
	})

	t.Run("UnknownOutput", func(t *testing.T) {
		_, _, err := New(config.LoggingConfig{Output: "syslog"}, appCfg)
		assert.Error(t, err)
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		logger, _, err := New(config.LoggingConfig{Level: "invalid"}, appCfg)
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	parent := zerolog.New(&buf)

	Component(&parent, "lock").Info().Msg("hello")
	assert.Contains(t, buf.String(), `"component":"lock"`)

	assert.NotPanics(t, func() {
		Component(nil, "lock").Info().Msg("dropped")
	})
}
