package classify

import (
	"strings"

	"go.uber.org/zap"
)

// Rule is one declarative condition/action pair. When is a plain
// predicate over the working memory; Then inserts facts. Rules never
// remove facts, so the forward-chaining loop terminates at the fixpoint
// where no rule grows the store.
type Rule struct {
	Name string
	When func(wm *WorkingMemory) bool
	Then func(wm *WorkingMemory)
}

// DefaultIterationCap bounds the forward-chaining loop. The built-in
// rule set converges in two or three passes; the cap is a guard against
// a future rule that feeds itself.
const DefaultIterationCap = 16

// RunRules forward-chains to fixpoint. A rule that grows the store in a
// pass gets a RuleFired fact; the loop stops when a full pass changes
// nothing or the iteration cap is hit.
func RunRules(wm *WorkingMemory, rules []Rule, iterationCap int, logger *zap.Logger) {
	if iterationCap <= 0 {
		iterationCap = DefaultIterationCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for iter := 0; iter < iterationCap; iter++ {
		changed := false
		for _, rule := range rules {
			if rule.When == nil || rule.Then == nil || !rule.When(wm) {
				continue
			}
			before := wm.Len()
			wm.currentRule = rule.Name
			rule.Then(wm)
			wm.currentRule = ""
			if wm.Len() > before {
				changed = true
				wm.Insert(RuleFired{Rule: rule.Name})
				logger.Debug("rule fired",
					zap.String("rule", rule.Name),
					zap.Int("new_facts", wm.Len()-before))
			}
		}
		if !changed {
			return
		}
	}
	logger.Warn("rule evaluation hit iteration cap", zap.Int("cap", iterationCap))
}

// RuleParams are the thresholds the built-in rules read.
type RuleParams struct {
	// SuppressionThreshold is the negative-evidence score at or above
	// which an intent is suppressed outright.
	SuppressionThreshold float64

	// SpecificityFloor is the minimum positive evidence both competing
	// intents need before the specificity bias kicks in.
	SpecificityFloor float64

	// SpecificityBoost is added to the more specific intent's
	// confidence when it competes with a broader one.
	SpecificityBoost float64

	// RecencyBoost is added to item.describe when the previous turn
	// listed the inventory.
	RecencyBoost float64
}

// DefaultRuleParams returns the tuning the default rule set ships with.
func DefaultRuleParams() RuleParams {
	return RuleParams{
		SuppressionThreshold: 0.45,
		SpecificityFloor:     0.5,
		SpecificityBoost:     0.1,
		RecencyBoost:         0.05,
	}
}

// DefaultRules builds the contract rule set: hint promotion, negative
// suppression, item slot filling, inventory/describe specificity bias,
// describe-after-listing recency bias, and ambiguity surfacing.
func DefaultRules(params RuleParams) []Rule {
	return []Rule{
		{
			// Every positive hint becomes a base intent candidate at
			// the hint's confidence.
			Name: "intent.promote.positive-hints",
			When: func(wm *WorkingMemory) bool { return len(wm.FuzzyHints()) > 0 },
			Then: func(wm *WorkingMemory) {
				for _, h := range wm.FuzzyHints() {
					wm.Insert(Intent{Name: h.Intent, Confidence: clampConfidence(h.Score)})
				}
			},
		},
		{
			// Strong negative evidence suppresses the intent no matter
			// what the positive side scored.
			Name: "intent.suppress.negative-evidence",
			When: func(wm *WorkingMemory) bool {
				for _, h := range wm.NegativeHints() {
					if h.Score >= params.SuppressionThreshold {
						return true
					}
				}
				return false
			},
			Then: func(wm *WorkingMemory) {
				for _, h := range wm.NegativeHints() {
					if h.Score >= params.SuppressionThreshold {
						wm.Insert(SuppressedIntent{Name: h.Intent})
					}
				}
			},
		},
		{
			// A resolved inventory item turns describe evidence into a
			// slotted candidate: the item name travels with the intent.
			Name: "item.describe.fill-slot",
			When: func(wm *WorkingMemory) bool {
				_, resolved := wm.ResolvedItem()
				_, hinted := wm.HintFor(IntentItemDescribe)
				return resolved && hinted
			},
			Then: func(wm *WorkingMemory) {
				res, _ := wm.ResolvedItem()
				hint, _ := wm.HintFor(IntentItemDescribe)
				wm.Insert(Intent{
					Name:       IntentItemDescribe,
					Slots:      map[string]string{"item": res.Item.Name},
					Confidence: clampConfidence(0.6*hint.Score + 0.4*res.Score),
				})
			},
		},
		{
			// When inventory listing and item describing both have
			// strong evidence, the more specific intent wins the tie.
			Name: "intent.bias.specificity",
			When: func(wm *WorkingMemory) bool {
				list, okList := wm.HintFor(IntentInventoryList)
				desc, okDesc := wm.HintFor(IntentItemDescribe)
				return okList && okDesc &&
					list.Score >= params.SpecificityFloor &&
					desc.Score >= params.SpecificityFloor
			},
			Then: func(wm *WorkingMemory) {
				list, _ := wm.HintFor(IntentInventoryList)
				desc, _ := wm.HintFor(IntentItemDescribe)
				top := desc.Score
				if list.Score > top {
					top = list.Score
				}
				wm.Insert(Intent{
					Name:       IntentItemDescribe,
					Confidence: clampConfidence(top + params.SpecificityBoost),
				})
			},
		},
		{
			// Right after an inventory listing, describe requests get
			// the benefit of the doubt.
			Name: "intent.bias.recent-listing",
			When: func(wm *WorkingMemory) bool {
				recent, ok := wm.Recent()
				if !ok || recent.Name != IntentInventoryList {
					return false
				}
				_, hinted := wm.HintFor(IntentItemDescribe)
				return hinted
			},
			Then: func(wm *WorkingMemory) {
				hint, _ := wm.HintFor(IntentItemDescribe)
				wm.Insert(Intent{
					Name:       IntentItemDescribe,
					Confidence: clampConfidence(hint.Score + params.RecencyBoost),
				})
			},
		},
		{
			// Ambiguous item matches surface as a clarify intent with
			// the candidate list in a slot; the caller decides how to
			// disambiguate.
			Name: "item.clarify.ambiguous",
			When: func(wm *WorkingMemory) bool {
				_, ok := wm.AmbiguousItem()
				return ok
			},
			Then: func(wm *WorkingMemory) {
				res, _ := wm.AmbiguousItem()
				wm.Insert(Intent{
					Name:       IntentItemClarify,
					Slots:      map[string]string{"candidates": strings.Join(res.Candidates, "|")},
					Confidence: clampConfidence(res.Score),
				})
			},
		},
	}
}
