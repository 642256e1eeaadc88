// Package engine orchestrates one conversation turn: tag the utterance,
// classify it, and thread the caller-owned recent-intent state through.
// The engine holds no conversation state of its own, so one instance
// serves any number of concurrent sessions.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"npcmind/internal/actor"
	"npcmind/internal/classify"
	"npcmind/internal/grammar"
	"npcmind/internal/kernel"
)

// Tagger is the external part-of-speech tagger seam. Implementations
// must filter punctuation tokens before returning.
type Tagger interface {
	Tag(text string) []grammar.ParsedToken
}

// Config tunes cross-turn behavior.
type Config struct {
	// DecayFactor multiplies the carried intent's confidence on every
	// turn that produces no fresh intent. Must be in (0,1).
	DecayFactor float64

	// DecayFloor is the confidence below which the carried intent is
	// dropped entirely.
	DecayFloor float64
}

// DefaultConfig returns the decay tuning used in production.
func DefaultConfig() Config {
	return Config{DecayFactor: 0.8, DecayFloor: 0.05}
}

func (c Config) validate() error {
	if c.DecayFactor <= 0 || c.DecayFactor >= 1 {
		return fmt.Errorf("decay factor must be in (0,1), got %f", c.DecayFactor)
	}
	if c.DecayFloor < 0 || c.DecayFloor >= 1 {
		return fmt.Errorf("decay floor must be in [0,1), got %f", c.DecayFloor)
	}
	return nil
}

// Result is what one processed turn hands back to the caller.
type Result struct {
	// TurnID correlates logs and audit facts for this turn.
	TurnID uuid.UUID

	Intents    []classify.Intent
	FiredRules []string

	// Recent is the updated cross-turn state the caller owns: the top
	// fresh intent, the decayed previous one, or nil.
	Recent *classify.RecentIntent
}

// Engine runs the NLU pipeline per utterance.
type Engine struct {
	cfg        Config
	tagger     Tagger
	classifier *classify.Classifier
	audit      *kernel.Kernel // optional
	logger     *zap.Logger
}

// New wires the engine. The audit kernel may be nil; classification
// does not depend on it.
func New(cfg Config, tagger Tagger, classifier *classify.Classifier, audit *kernel.Kernel, logger *zap.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if tagger == nil {
		return nil, fmt.Errorf("engine requires a tagger")
	}
	if classifier == nil {
		return nil, fmt.Errorf("engine requires a classifier")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		tagger:     tagger,
		classifier: classifier,
		audit:      audit,
		logger:     logger,
	}, nil
}

// Process classifies one utterance. The recent intent is read-only
// input; the updated value comes back in the result and the caller
// decides where it lives.
func (e *Engine) Process(ctx context.Context, utterance string, subject actor.Actor, recent *classify.RecentIntent) (Result, error) {
	result := Result{TurnID: uuid.New()}
	logger := e.logger.With(zap.String("turn_id", result.TurnID.String()))

	if strings.TrimSpace(utterance) == "" {
		result.Recent = e.decayed(recent)
		return result, nil
	}

	tokens := e.tagger.Tag(utterance)
	classified, wm, err := e.classifier.Classify(ctx, utterance, tokens, subject, recent)
	if err != nil {
		return Result{}, fmt.Errorf("classify utterance: %w", err)
	}
	result.Intents = classified.Intents
	result.FiredRules = classified.FiredRules

	if e.audit != nil {
		if err := e.audit.Record(result.TurnID.String(), wm); err != nil {
			// Auditing is best effort and never blocks the turn.
			logger.Warn("audit kernel rejected turn facts", zap.Error(err))
		}
	}

	if len(result.Intents) > 0 {
		top := result.Intents[0]
		result.Recent = &classify.RecentIntent{Name: top.Name, Confidence: top.Confidence}
	} else {
		result.Recent = e.decayed(recent)
	}

	logger.Info("turn processed",
		zap.String("role", subject.Role),
		zap.Int("intents", len(result.Intents)),
		zap.Strings("fired_rules", result.FiredRules))
	return result, nil
}

func (e *Engine) decayed(recent *classify.RecentIntent) *classify.RecentIntent {
	if recent == nil {
		return nil
	}
	return recent.Decay(e.cfg.DecayFactor, e.cfg.DecayFloor)
}
