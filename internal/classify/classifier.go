package classify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"npcmind/internal/actor"
	"npcmind/internal/fuzzy"
	"npcmind/internal/grammar"
	"npcmind/internal/lexicon"
)

// Config tunes the classifier. Zero values are replaced by defaults at
// construction; invalid search options fail fast there.
type Config struct {
	Search          fuzzy.Options
	Rules           RuleParams
	IterationCap    int
	AmbiguityWindow float64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Search:          fuzzy.DefaultOptions(),
		Rules:           DefaultRuleParams(),
		IterationCap:    DefaultIterationCap,
		AmbiguityWindow: 0.1,
	}
}

// Result is one turn's classification output.
type Result struct {
	Intents    []Intent
	FiredRules []string
}

// Classifier wires evidence providers and rules over a fresh working
// memory per call. It holds no per-utterance state, so a single
// instance may serve concurrent conversations.
type Classifier struct {
	cfg       Config
	providers []Provider
	rules     []Rule
	logger    *zap.Logger
}

// New builds a classifier from immutable lexicons. Nil lexicons fall
// back to the embedded defaults.
func New(cfg Config, positive, negative lexicon.Lexicon, logger *zap.Logger) (*Classifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IterationCap <= 0 {
		cfg.IterationCap = DefaultIterationCap
	}
	if cfg.AmbiguityWindow <= 0 {
		cfg.AmbiguityWindow = 0.1
	}
	if cfg.Search == (fuzzy.Options{}) {
		cfg.Search = fuzzy.DefaultOptions()
	}
	if err := cfg.Search.Validate(); err != nil {
		return nil, fmt.Errorf("classifier config: %w", err)
	}
	if positive == nil {
		positive = lexicon.DefaultPositive()
	}
	if negative == nil {
		negative = lexicon.DefaultNegative()
	}

	negProvider, err := NewNegativeLexiconProvider(negative, cfg.Search, logger)
	if err != nil {
		return nil, fmt.Errorf("negative lexicon provider: %w", err)
	}
	posProvider, err := NewPositiveLexiconProvider(positive, cfg.Search, logger)
	if err != nil {
		return nil, fmt.Errorf("positive lexicon provider: %w", err)
	}
	itemProvider, err := NewItemResolutionProvider(cfg.Search, cfg.AmbiguityWindow, logger)
	if err != nil {
		return nil, fmt.Errorf("item resolution provider: %w", err)
	}

	return &Classifier{
		cfg: cfg,
		// Fixed provider order; the item resolver reads the seed fact
		// and so runs last.
		providers: []Provider{negProvider, posProvider, itemProvider},
		rules:     DefaultRules(cfg.Rules),
		logger:    logger,
	}, nil
}

// Classify runs the full evidence/rules/aggregation pipeline for one
// utterance. An empty or whitespace utterance yields an empty result
// without invoking any provider. The returned working memory is the
// turn's complete fact trace, for auditing.
func (c *Classifier) Classify(ctx context.Context, utterance string, tokens []grammar.ParsedToken, subject actor.Actor, recent *RecentIntent) (Result, *WorkingMemory, error) {
	wm := NewWorkingMemory()
	if strings.TrimSpace(utterance) == "" {
		return Result{}, wm, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, wm, err
	}

	wm.Insert(UserUtterance{Text: utterance})
	wm.Insert(ActorRole{Role: subject.Role})
	if recent != nil {
		wm.Insert(RecentIntentFact{Name: recent.Name, Confidence: recent.Confidence})
	}
	wm.Insert(SeedFact{Seed: grammar.ExtractSeed(tokens)})

	for _, p := range c.providers {
		if err := p.Provide(wm, subject); err != nil {
			return Result{}, wm, fmt.Errorf("%s: %w", p.Name(), err)
		}
	}

	RunRules(wm, c.rules, c.cfg.IterationCap, c.logger)

	intents := Aggregate(wm)
	fired := wm.FiredRules()
	c.logger.Debug("classification complete",
		zap.Int("facts", wm.Len()),
		zap.Int("intents", len(intents)),
		zap.Strings("fired_rules", fired))

	return Result{Intents: intents, FiredRules: fired}, wm, nil
}
