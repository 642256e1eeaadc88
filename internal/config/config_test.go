package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Greater(t, cfg.Engine.IterationCap, 0)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Search, cfg.Search)
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "npcmind.yaml")
	body := `
engine:
  decay_factor: 0.5
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Engine.DecayFactor)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultConfig().Search, cfg.Search)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "npcmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  decay_factor: 2.0\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NPCMIND_LOG_LEVEL", "warn")
	t.Setenv("NPCMIND_POSITIVE_LEXICON", "/tmp/pos.json")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	// Env overrides apply only when a config file is present; defaults
	// path skips them.
	assert.Equal(t, "info", cfg.Logging.Level)

	path := filepath.Join(t.TempDir(), "npcmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/tmp/pos.json", cfg.Lexicons.PositivePath)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"

	path := filepath.Join(t.TempDir(), "nested", "npcmind.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Engine, loaded.Engine)
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestClassifierConfig_CarriesThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.SuppressionThreshold = 0.6
	cfg.Engine.AmbiguityWindow = 0.2

	cc := cfg.ClassifierConfig()
	assert.Equal(t, 0.6, cc.Rules.SuppressionThreshold)
	assert.Equal(t, 0.2, cc.AmbiguityWindow)
	assert.NoError(t, cc.Search.Validate())
}
