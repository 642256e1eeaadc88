package classify

import (
	"fmt"

	"go.uber.org/zap"

	"npcmind/internal/actor"
	"npcmind/internal/fuzzy"
	"npcmind/internal/lexicon"
)

// Provider inserts hint facts from one source of signal. Providers run
// once per call, in a fixed order; only the item resolver depends on
// facts inserted before it (the seed's noun phrases).
type Provider interface {
	Name() string
	Provide(wm *WorkingMemory, subject actor.Actor) error
}

// lexiconMatcher is the shared machinery of the positive and negative
// lexicon providers: one prebuilt index per intent, queried with the
// raw utterance.
type lexiconMatcher struct {
	intents []string
	indexes map[string]*fuzzy.Index
}

func newLexiconMatcher(lex lexicon.Lexicon, opts fuzzy.Options) (*lexiconMatcher, error) {
	m := &lexiconMatcher{
		intents: lex.IntentNames(),
		indexes: make(map[string]*fuzzy.Index, len(lex)),
	}
	for _, intent := range m.intents {
		ix, err := fuzzy.NewIndex(lex[intent], opts)
		if err != nil {
			return nil, fmt.Errorf("index phrases for %s: %w", intent, err)
		}
		m.indexes[intent] = ix
	}
	return m, nil
}

// bestScores returns the strongest phrase match per intent, sorted by
// intent name for determinism.
func (m *lexiconMatcher) bestScores(utterance string) map[string]float64 {
	scores := make(map[string]float64, len(m.intents))
	for _, intent := range m.intents {
		if best, ok := m.indexes[intent].Best(utterance); ok {
			scores[intent] = best.Score
		}
	}
	return scores
}

// NegativeLexiconProvider matches the utterance against "don't want
// this" phrase lists and inserts negative hints.
type NegativeLexiconProvider struct {
	matcher *lexiconMatcher
	logger  *zap.Logger
}

// NewNegativeLexiconProvider prebuilds the per-intent phrase indexes.
func NewNegativeLexiconProvider(lex lexicon.Lexicon, opts fuzzy.Options, logger *zap.Logger) (*NegativeLexiconProvider, error) {
	matcher, err := newLexiconMatcher(lex, opts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NegativeLexiconProvider{matcher: matcher, logger: logger}, nil
}

func (p *NegativeLexiconProvider) Name() string { return "evidence.lexicon.negative" }

func (p *NegativeLexiconProvider) Provide(wm *WorkingMemory, _ actor.Actor) error {
	utterance, ok := wm.Utterance()
	if !ok {
		return nil
	}
	scores := p.matcher.bestScores(utterance)
	for _, intent := range p.matcher.intents {
		score, hit := scores[intent]
		if !hit {
			continue
		}
		wm.Insert(NegativeIntentHint{Intent: intent, Score: score})
		p.logger.Debug("negative evidence",
			zap.String("intent", intent),
			zap.Float64("score", score))
	}
	return nil
}

// PositiveLexiconProvider matches the utterance against per-intent
// phrase lists and inserts positive hints.
type PositiveLexiconProvider struct {
	matcher *lexiconMatcher
	logger  *zap.Logger
}

// NewPositiveLexiconProvider prebuilds the per-intent phrase indexes.
func NewPositiveLexiconProvider(lex lexicon.Lexicon, opts fuzzy.Options, logger *zap.Logger) (*PositiveLexiconProvider, error) {
	matcher, err := newLexiconMatcher(lex, opts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PositiveLexiconProvider{matcher: matcher, logger: logger}, nil
}

func (p *PositiveLexiconProvider) Name() string { return "evidence.lexicon.positive" }

func (p *PositiveLexiconProvider) Provide(wm *WorkingMemory, _ actor.Actor) error {
	utterance, ok := wm.Utterance()
	if !ok {
		return nil
	}
	scores := p.matcher.bestScores(utterance)
	for _, intent := range p.matcher.intents {
		score, hit := scores[intent]
		if !hit {
			continue
		}
		wm.Insert(FuzzyIntentHint{Intent: intent, Score: score})
		p.logger.Debug("positive evidence",
			zap.String("intent", intent),
			zap.Float64("score", score))
	}
	return nil
}

// ItemResolutionProvider matches the utterance's object phrase against
// the actor inventory. It runs after the lexicon providers and reads
// the seed fact they left untouched.
type ItemResolutionProvider struct {
	opts fuzzy.Options

	// ambiguityWindow is how close (absolutely) a runner-up from a
	// different item must score to force the ambiguous outcome.
	ambiguityWindow float64

	logger *zap.Logger
}

// NewItemResolutionProvider builds the inventory resolver.
func NewItemResolutionProvider(opts fuzzy.Options, ambiguityWindow float64, logger *zap.Logger) (*ItemResolutionProvider, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("item resolution options: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemResolutionProvider{opts: opts, ambiguityWindow: ambiguityWindow, logger: logger}, nil
}

func (p *ItemResolutionProvider) Name() string { return "evidence.item.resolution" }

func (p *ItemResolutionProvider) Provide(wm *WorkingMemory, subject actor.Actor) error {
	if len(subject.Inventory) == 0 {
		return nil
	}

	query := p.resolveQuery(wm)
	if query == "" {
		return nil
	}

	// Flatten name+alias candidates, remembering which item each
	// candidate names.
	var candidates []string
	owner := make([]actor.Item, 0)
	for _, item := range subject.Inventory {
		for _, c := range item.Candidates() {
			candidates = append(candidates, c)
			owner = append(owner, item)
		}
	}

	ix, err := fuzzy.NewIndex(candidates, p.opts)
	if err != nil {
		return fmt.Errorf("index inventory: %w", err)
	}

	results := ix.Search(query)
	if len(results) == 0 {
		return nil
	}

	// Collapse alias hits to distinct items, best score first.
	top := results[0].Score
	seen := make(map[string]struct{})
	var distinct []string
	for _, r := range results {
		if top-r.Score > p.ambiguityWindow {
			break
		}
		for i, c := range candidates {
			if c == r.Text {
				name := owner[i].Name
				if _, dup := seen[name]; !dup {
					seen[name] = struct{}{}
					distinct = append(distinct, name)
				}
				break
			}
		}
	}

	if len(distinct) > 1 {
		wm.Insert(ItemResolution{
			Outcome:    ResolutionAmbiguous,
			Query:      query,
			Score:      top,
			Candidates: distinct,
		})
		p.logger.Debug("item resolution ambiguous",
			zap.String("query", query),
			zap.Strings("candidates", distinct))
		return nil
	}

	item, _ := subject.FindItem(distinct[0])
	wm.Insert(ItemResolution{
		Outcome:    ResolutionResolved,
		Item:       item,
		Query:      query,
		Score:      top,
		Candidates: distinct,
	})
	p.logger.Debug("item resolved",
		zap.String("query", query),
		zap.String("item", item.Name),
		zap.Float64("score", top))
	return nil
}

// resolveQuery picks the phrase to match: the seed's object phrase when
// grammar found one, else the whole utterance.
func (p *ItemResolutionProvider) resolveQuery(wm *WorkingMemory) string {
	if seed, ok := wm.Seed(); ok {
		if np := seed.ObjectPhrase(); np != nil {
			if core := np.CoreText(); core != "" {
				return core
			}
		}
	}
	utterance, _ := wm.Utterance()
	return utterance
}
