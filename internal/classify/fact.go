// Package classify is the fact-driven core of the NLU pipeline. Each
// utterance gets its own append-only working memory; evidence providers
// insert weighted hints, declarative rules chain forward to a fixpoint,
// and the aggregator collapses the resulting intent candidates into a
// ranked, deduplicated list with suppression applied.
package classify

import (
	"fmt"
	"sort"
	"strings"

	"npcmind/internal/actor"
	"npcmind/internal/grammar"
)

// Well-known intent names used by the built-in rules.
const (
	IntentInventoryList = "shop.inventory.list"
	IntentItemDescribe  = "item.describe"
	IntentItemBuy       = "item.buy"
	IntentItemClarify   = "item.clarify"
)

// Fact kinds, one per variant below.
const (
	KindUtterance    = "user_utterance"
	KindActorRole    = "actor_role"
	KindRecentIntent = "recent_intent"
	KindSeed         = "intent_seed"
	KindFuzzyHint    = "fuzzy_intent_hint"
	KindNegativeHint = "negative_intent_hint"
	KindResolution   = "item_resolution"
	KindIntent       = "intent"
	KindSuppressed   = "suppressed_intent"
	KindRuleFired    = "rule_fired"
)

// Fact is the closed variant type held by the working memory. Every
// variant is a small value struct; rules never reflect over facts, they
// switch on the concrete type or use the typed accessors.
type Fact interface {
	Kind() string

	// memoKey is the canonical encoding used for deduplication;
	// structurally equal facts encode identically.
	memoKey() string
}

// UserUtterance is the raw player text for this turn.
type UserUtterance struct {
	Text string
}

func (f UserUtterance) Kind() string    { return KindUtterance }
func (f UserUtterance) memoKey() string { return KindUtterance + "|" + f.Text }

// ActorRole records the role of the NPC being addressed.
type ActorRole struct {
	Role string
}

func (f ActorRole) Kind() string    { return KindActorRole }
func (f ActorRole) memoKey() string { return KindActorRole + "|" + f.Role }

// RecentIntent is the single piece of cross-turn state: the last intent
// that fired, with a confidence that decays while unreinforced. It is
// owned by the caller and threaded through explicitly.
type RecentIntent struct {
	Name       string
	Confidence float64
}

// Decay returns a copy with confidence reduced by factor, or nil once
// the confidence falls below floor. Confidence strictly decreases for
// any factor in (0,1).
func (r RecentIntent) Decay(factor, floor float64) *RecentIntent {
	next := RecentIntent{Name: r.Name, Confidence: r.Confidence * factor}
	if next.Confidence < floor {
		return nil
	}
	return &next
}

// RecentIntentFact exposes the carried-over intent to the rules.
type RecentIntentFact struct {
	Name       string
	Confidence float64
}

func (f RecentIntentFact) Kind() string { return KindRecentIntent }
func (f RecentIntentFact) memoKey() string {
	return fmt.Sprintf("%s|%s|%.6f", KindRecentIntent, f.Name, f.Confidence)
}

// SeedFact carries the syntactic frame extracted for this utterance.
type SeedFact struct {
	Seed grammar.IntentSeed
}

func (f SeedFact) Kind() string { return KindSeed }
func (f SeedFact) memoKey() string {
	// One seed per turn; the verb is enough to key it.
	return KindSeed + "|" + f.Seed.Verb
}

// FuzzyIntentHint is positive lexicon evidence for an intent.
type FuzzyIntentHint struct {
	Intent string
	Score  float64
}

func (f FuzzyIntentHint) Kind() string { return KindFuzzyHint }
func (f FuzzyIntentHint) memoKey() string {
	return fmt.Sprintf("%s|%s|%.6f", KindFuzzyHint, f.Intent, f.Score)
}

// NegativeIntentHint is evidence that the player does NOT want an
// intent ("I don't want to buy anything").
type NegativeIntentHint struct {
	Intent string
	Score  float64
}

func (f NegativeIntentHint) Kind() string { return KindNegativeHint }
func (f NegativeIntentHint) memoKey() string {
	return fmt.Sprintf("%s|%s|%.6f", KindNegativeHint, f.Intent, f.Score)
}

// ResolutionOutcome classifies an item-resolution attempt.
type ResolutionOutcome int

const (
	// ResolutionResolved means exactly one inventory item matched.
	ResolutionResolved ResolutionOutcome = iota
	// ResolutionAmbiguous means several items scored too close to
	// call; the candidate list is surfaced for the caller to
	// disambiguate. This is a first-class outcome, not an error.
	ResolutionAmbiguous
)

func (o ResolutionOutcome) String() string {
	if o == ResolutionAmbiguous {
		return "ambiguous"
	}
	return "resolved"
}

// ItemResolution records the outcome of matching a noun phrase against
// the actor inventory.
type ItemResolution struct {
	Outcome    ResolutionOutcome
	Item       actor.Item // zero value unless Outcome == ResolutionResolved
	Query      string
	Score      float64
	Candidates []string // distinct item names, best first
}

func (f ItemResolution) Kind() string { return KindResolution }
func (f ItemResolution) memoKey() string {
	return fmt.Sprintf("%s|%s|%s|%s", KindResolution, f.Outcome, f.Query, strings.Join(f.Candidates, ","))
}

// Intent is a classification candidate produced by rule firing.
// Identity is (Name, Slots); confidence is deliberately excluded so the
// aggregator can collapse duplicates to their best score.
type Intent struct {
	Name       string
	Slots      map[string]string
	Confidence float64
}

// SlotKey is the (name, sorted slots) identity used for deduplication.
func (in Intent) SlotKey() string {
	if len(in.Slots) == 0 {
		return in.Name
	}
	keys := make([]string, 0, len(in.Slots))
	for k := range in.Slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(in.Name)
	for _, k := range keys {
		sb.WriteString("|")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(in.Slots[k])
	}
	return sb.String()
}

func (in Intent) Kind() string { return KindIntent }
func (in Intent) memoKey() string {
	return fmt.Sprintf("%s|%s|%.6f", KindIntent, in.SlotKey(), in.Confidence)
}

// SuppressedIntent excludes an intent name from the final ranking
// regardless of its confidence.
type SuppressedIntent struct {
	Name string
}

func (f SuppressedIntent) Kind() string    { return KindSuppressed }
func (f SuppressedIntent) memoKey() string { return KindSuppressed + "|" + f.Name }

// RuleFired records that a rule produced at least one new fact this
// turn.
type RuleFired struct {
	Rule string
}

func (f RuleFired) Kind() string    { return KindRuleFired }
func (f RuleFired) memoKey() string { return KindRuleFired + "|" + f.Rule }

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
