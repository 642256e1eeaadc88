package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"npcmind/internal/config"
)

func TestNew_Levels(t *testing.T) {
	for level, want := range map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		logger, err := New(config.LoggingConfig{Level: level})
		require.NoError(t, err, level)
		assert.True(t, logger.Core().Enabled(want), level)
		if want != zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(want-1), level)
		}
		_ = logger.Sync()
	}
}

func TestNew_DefaultsToInfo(t *testing.T) {
	logger, err := New(config.LoggingConfig{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
