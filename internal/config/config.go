// Package config holds all npcmind configuration: fuzzy search tuning,
// lexicon locations, rule thresholds, cross-turn decay, and logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"npcmind/internal/classify"
	"npcmind/internal/engine"
	"npcmind/internal/fuzzy"
)

// Config holds all npcmind configuration.
type Config struct {
	// Fuzzy n-gram search tuning
	Search SearchConfig `yaml:"search"`

	// Lexicon file locations; empty paths fall back to the embedded defaults
	Lexicons LexiconConfig `yaml:"lexicons"`

	// Rule engine thresholds and cross-turn decay
	Engine EngineConfig `yaml:"engine"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SearchConfig configures the character n-gram matcher.
type SearchConfig struct {
	MinNgramSize      int     `yaml:"min_ngram_size"`
	MaxNgramSize      int     `yaml:"max_ngram_size"`
	IncludeWordNgrams bool    `yaml:"include_word_ngrams"`
	MinimumSimilarity float64 `yaml:"minimum_similarity"`
}

// LexiconConfig points at the positive and negative phrase lexicons.
type LexiconConfig struct {
	PositivePath string `yaml:"positive_path"`
	NegativePath string `yaml:"negative_path"`
}

// EngineConfig configures rule evaluation and recent-intent decay.
type EngineConfig struct {
	IterationCap         int     `yaml:"iteration_cap"`
	AmbiguityWindow      float64 `yaml:"ambiguity_window"`
	SuppressionThreshold float64 `yaml:"suppression_threshold"`
	DecayFactor          float64 `yaml:"decay_factor"`
	DecayFloor           float64 `yaml:"decay_floor"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level       string `yaml:"level"`  // debug, info, warn, error
	Format      string `yaml:"format"` // json, console
	Development bool   `yaml:"development"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	search := fuzzy.DefaultOptions()
	rules := classify.DefaultRuleParams()
	decay := engine.DefaultConfig()
	cc := classify.DefaultConfig()

	return &Config{
		Search: SearchConfig{
			MinNgramSize:      search.MinNgramSize,
			MaxNgramSize:      search.MaxNgramSize,
			IncludeWordNgrams: search.IncludeWordNgrams,
			MinimumSimilarity: search.MinimumSimilarity,
		},
		Engine: EngineConfig{
			IterationCap:         cc.IterationCap,
			AmbiguityWindow:      cc.AmbiguityWindow,
			SuppressionThreshold: rules.SuppressionThreshold,
			DecayFactor:          decay.DecayFactor,
			DecayFloor:           decay.DecayFloor,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file, layered over defaults.
// A missing file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NPCMIND_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NPCMIND_POSITIVE_LEXICON"); v != "" {
		c.Lexicons.PositivePath = v
	}
	if v := os.Getenv("NPCMIND_NEGATIVE_LEXICON"); v != "" {
		c.Lexicons.NegativePath = v
	}
}

// Validate rejects configurations that would misbehave at runtime.
func (c *Config) Validate() error {
	if err := c.SearchOptions().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.Engine.IterationCap <= 0 {
		return fmt.Errorf("engine: iteration cap must be positive, got %d", c.Engine.IterationCap)
	}
	if c.Engine.AmbiguityWindow < 0 || c.Engine.AmbiguityWindow > 1 {
		return fmt.Errorf("engine: ambiguity window must be in [0,1], got %f", c.Engine.AmbiguityWindow)
	}
	if c.Engine.DecayFactor <= 0 || c.Engine.DecayFactor >= 1 {
		return fmt.Errorf("engine: decay factor must be in (0,1), got %f", c.Engine.DecayFactor)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	return nil
}

// SearchOptions converts the search section to matcher options.
func (c *Config) SearchOptions() fuzzy.Options {
	return fuzzy.Options{
		MinNgramSize:      c.Search.MinNgramSize,
		MaxNgramSize:      c.Search.MaxNgramSize,
		IncludeWordNgrams: c.Search.IncludeWordNgrams,
		MinimumSimilarity: c.Search.MinimumSimilarity,
	}
}

// ClassifierConfig converts the relevant sections to a classifier config.
func (c *Config) ClassifierConfig() classify.Config {
	rules := classify.DefaultRuleParams()
	rules.SuppressionThreshold = c.Engine.SuppressionThreshold
	return classify.Config{
		Search:          c.SearchOptions(),
		Rules:           rules,
		IterationCap:    c.Engine.IterationCap,
		AmbiguityWindow: c.Engine.AmbiguityWindow,
	}
}

// EngineDecay converts the engine section to orchestrator tuning.
func (c *Config) EngineDecay() engine.Config {
	return engine.Config{
		DecayFactor: c.Engine.DecayFactor,
		DecayFloor:  c.Engine.DecayFloor,
	}
}
