package classify

import (
	"sort"

	"npcmind/internal/grammar"
)

// WorkingMemory is the per-call fact store. Append-only: facts are
// inserted, never removed, and duplicates (by canonical encoding) are
// rejected so the forward-chaining loop can detect its fixpoint.
//
// A WorkingMemory lives for exactly one classification call and is not
// safe for concurrent use; concurrency happens across calls, each with
// its own store.
type WorkingMemory struct {
	facts  []Fact
	byKind map[string][]Fact
	seen   map[string]struct{}

	// currentRule attributes inserts to the rule being fired, giving
	// provenance for the audit kernel without any reflection.
	currentRule string
	provenance  map[string][]string // intent SlotKey -> rule names
}

// NewWorkingMemory returns an empty store.
func NewWorkingMemory() *WorkingMemory {
	return &WorkingMemory{
		byKind:     make(map[string][]Fact),
		seen:       make(map[string]struct{}),
		provenance: make(map[string][]string),
	}
}

// Insert adds a fact unless a structurally equal one is present.
// Reports whether the store grew.
func (wm *WorkingMemory) Insert(f Fact) bool {
	key := f.memoKey()
	if _, dup := wm.seen[key]; dup {
		return false
	}
	wm.seen[key] = struct{}{}
	wm.facts = append(wm.facts, f)
	wm.byKind[f.Kind()] = append(wm.byKind[f.Kind()], f)

	if wm.currentRule != "" {
		if in, ok := f.(Intent); ok {
			wm.provenance[in.SlotKey()] = append(wm.provenance[in.SlotKey()], wm.currentRule)
		}
	}
	return true
}

// Len returns the number of stored facts.
func (wm *WorkingMemory) Len() int { return len(wm.facts) }

// All returns the stored facts in insertion order.
func (wm *WorkingMemory) All() []Fact { return wm.facts }

// Utterance returns the turn's raw player text, if inserted.
func (wm *WorkingMemory) Utterance() (string, bool) {
	for _, f := range wm.byKind[KindUtterance] {
		return f.(UserUtterance).Text, true
	}
	return "", false
}

// Seed returns the syntactic frame for this turn, if one was inserted.
func (wm *WorkingMemory) Seed() (grammar.IntentSeed, bool) {
	for _, f := range wm.byKind[KindSeed] {
		return f.(SeedFact).Seed, true
	}
	return grammar.IntentSeed{}, false
}

// Recent returns the carried-over intent fact, if any.
func (wm *WorkingMemory) Recent() (RecentIntentFact, bool) {
	for _, f := range wm.byKind[KindRecentIntent] {
		return f.(RecentIntentFact), true
	}
	return RecentIntentFact{}, false
}

// FuzzyHints returns positive hints in insertion order.
func (wm *WorkingMemory) FuzzyHints() []FuzzyIntentHint {
	facts := wm.byKind[KindFuzzyHint]
	out := make([]FuzzyIntentHint, 0, len(facts))
	for _, f := range facts {
		out = append(out, f.(FuzzyIntentHint))
	}
	return out
}

// HintFor returns the best positive hint for an intent name.
func (wm *WorkingMemory) HintFor(intent string) (FuzzyIntentHint, bool) {
	var best FuzzyIntentHint
	found := false
	for _, h := range wm.FuzzyHints() {
		if h.Intent == intent && (!found || h.Score > best.Score) {
			best, found = h, true
		}
	}
	return best, found
}

// NegativeHints returns negative hints in insertion order.
func (wm *WorkingMemory) NegativeHints() []NegativeIntentHint {
	facts := wm.byKind[KindNegativeHint]
	out := make([]NegativeIntentHint, 0, len(facts))
	for _, f := range facts {
		out = append(out, f.(NegativeIntentHint))
	}
	return out
}

// Resolutions returns item-resolution facts in insertion order.
func (wm *WorkingMemory) Resolutions() []ItemResolution {
	facts := wm.byKind[KindResolution]
	out := make([]ItemResolution, 0, len(facts))
	for _, f := range facts {
		out = append(out, f.(ItemResolution))
	}
	return out
}

// ResolvedItem returns the first successfully resolved inventory item.
func (wm *WorkingMemory) ResolvedItem() (ItemResolution, bool) {
	for _, r := range wm.Resolutions() {
		if r.Outcome == ResolutionResolved {
			return r, true
		}
	}
	return ItemResolution{}, false
}

// AmbiguousItem returns the first ambiguous resolution, if any.
func (wm *WorkingMemory) AmbiguousItem() (ItemResolution, bool) {
	for _, r := range wm.Resolutions() {
		if r.Outcome == ResolutionAmbiguous {
			return r, true
		}
	}
	return ItemResolution{}, false
}

// Intents returns intent candidates in insertion order.
func (wm *WorkingMemory) Intents() []Intent {
	facts := wm.byKind[KindIntent]
	out := make([]Intent, 0, len(facts))
	for _, f := range facts {
		out = append(out, f.(Intent))
	}
	return out
}

// HasIntent reports whether any candidate with the given name exists.
func (wm *WorkingMemory) HasIntent(name string) bool {
	for _, in := range wm.Intents() {
		if in.Name == name {
			return true
		}
	}
	return false
}

// SuppressedNames returns the set of intent names excluded from output.
func (wm *WorkingMemory) SuppressedNames() map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range wm.byKind[KindSuppressed] {
		out[f.(SuppressedIntent).Name] = struct{}{}
	}
	return out
}

// FiredRules returns the sorted, de-duplicated names of the rules that
// produced facts this turn.
func (wm *WorkingMemory) FiredRules() []string {
	names := make([]string, 0, len(wm.byKind[KindRuleFired]))
	for _, f := range wm.byKind[KindRuleFired] {
		names = append(names, f.(RuleFired).Rule)
	}
	sort.Strings(names)
	return names
}

// Provenance returns the rules that inserted candidates with the given
// identity key, in firing order.
func (wm *WorkingMemory) Provenance(slotKey string) []string {
	return wm.provenance[slotKey]
}
