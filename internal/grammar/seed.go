package grammar

import (
	"sort"
	"strings"
)

// IntentSeed is the verb/subject/object frame extracted from one tagged
// utterance. Built fresh per utterance and never mutated afterwards.
type IntentSeed struct {
	Verb           string
	Subject        *NounPhrase
	DirectObject   *NounPhrase
	IndirectObject *NounPhrase

	// Prepositions holds phrases introduced by a preposition that no
	// object absorbed as a complement ("look AT the door").
	Prepositions map[string]*NounPhrase
}

// HasVerb reports whether a verb (or copular auxiliary) was resolved.
func (s IntentSeed) HasVerb() bool { return s.Verb != "" }

// ObjectPhrase returns the phrase most likely to name the thing the
// utterance is about. A direct object wins unless it is pronoun-headed
// ("tell ME about the bread"), in which case the pronoun's own
// prepositional complements, then the seed-level prepositional
// phrases, are more informative. Preposition keys are walked in sorted
// order so the choice is deterministic.
func (s IntentSeed) ObjectPhrase() *NounPhrase {
	if s.DirectObject != nil {
		if !IsPronounWord(strings.ToLower(s.DirectObject.Head)) {
			return s.DirectObject
		}
		if np := firstNominalComplement(s.DirectObject); np != nil {
			return np
		}
	}
	keys := make([]string, 0, len(s.Prepositions))
	for k := range s.Prepositions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		return s.Prepositions[k]
	}
	if s.DirectObject != nil {
		return s.DirectObject
	}
	return s.Subject
}

// firstNominalComplement walks a phrase's prepositional complements in
// sorted preposition order and returns the first one not headed by a
// pronoun, descending when a complement is itself pronoun-headed.
func firstNominalComplement(np *NounPhrase) *NounPhrase {
	if np == nil || len(np.Complements) == 0 {
		return nil
	}
	keys := make([]string, 0, len(np.Complements))
	for k := range np.Complements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		child := np.Complements[k]
		if child == nil {
			continue
		}
		if !IsPronounWord(strings.ToLower(child.Head)) {
			return child
		}
		if deeper := firstNominalComplement(child); deeper != nil {
			return deeper
		}
	}
	return nil
}

// ExtractSeed assigns grammatical roles over a tagged token sequence.
// Pure function of its input; calling it twice on the same tokens yields
// structurally equal seeds.
func ExtractSeed(tokens []ParsedToken) IntentSeed {
	seed := IntentSeed{Prepositions: make(map[string]*NounPhrase)}
	if len(tokens) == 0 {
		return seed
	}

	// Pass 1: verb resolution. Auxiliaries are remembered; an auxiliary
	// opening the sentence (or following only a leading pronoun) marks
	// an inverted, question-form structure. An auxiliary with no main
	// verb after it is itself the verb ("Is the door open?").
	mainVerbIndex := -1
	auxIndex := -1
	inverted := false
	for i, tok := range tokens {
		if tok.POS == POSAuxiliary {
			auxIndex = i
			if i == 0 || (i == 1 && tokens[0].POS == POSPronoun) {
				inverted = true
			}
			continue
		}
		if tok.POS == POSVerb {
			mainVerbIndex = i
			seed.Verb = tok.Canonical()
			break
		}
	}
	auxAsVerb := false
	if mainVerbIndex == -1 && auxIndex != -1 {
		mainVerbIndex = auxIndex
		seed.Verb = tokens[auxIndex].Canonical()
		auxAsVerb = true
	}

	// An auxiliary "precedes" the subject question only when it sits
	// before the main verb; a trailing auxiliary changes nothing.
	auxBeforeVerb := auxIndex != -1 && !auxAsVerb && auxIndex < mainVerbIndex

	// Pass 2: role assignment by position relative to the verb.
	pendingPrep := ""
	whSubject := false
	i := 0
	for i < len(tokens) {
		if i == mainVerbIndex || tokens[i].POS == POSAuxiliary {
			i++
			continue
		}

		start := i
		np := TryExtractPhrase(tokens, &i)
		if np == nil {
			if tokens[start].POS == POSAdposition {
				// Dangling preposition: remember it for the next phrase.
				pendingPrep = strings.ToLower(tokens[start].Text)
			}
			i = start + 1
			continue
		}

		if pendingPrep != "" {
			prep := pendingPrep
			pendingPrep = ""
			if _, taken := seed.Prepositions[prep]; !taken {
				seed.Prepositions[prep] = np
				continue
			}
			// The slot is taken; the phrase falls through and competes
			// for an object role instead of being lost.
		}

		switch {
		case mainVerbIndex == -1:
			// No verb at all: the first phrase is the direct object.
			if seed.DirectObject == nil {
				seed.DirectObject = np
			}

		case start < mainVerbIndex:
			head := strings.ToLower(np.Head)
			switch {
			case start == 0 && IsQuestionWord(head) && !auxBeforeVerb:
				// "Who opened the door?" - WH-subject question.
				seed.Subject = np
				whSubject = true
			case seed.Subject == nil && !IsQuestionWord(head):
				// "you" in "What do you have?"
				seed.Subject = np
			case seed.DirectObject == nil:
				seed.DirectObject = np
			}

		default: // start > mainVerbIndex
			switch {
			case inverted && seed.Subject == nil && mainVerbIndex <= 1:
				// Inverted structure with the verb very early: the
				// first post-verbal phrase is still the subject
				// ("Is THE DOOR open?").
				seed.Subject = np
			case seed.IndirectObject == nil && dativePronouns[strings.ToLower(np.Head)] &&
				phraseStartsAt(tokens, i):
				// Dative shift: "Show ME the door".
				seed.IndirectObject = np
			case seed.DirectObject == nil:
				seed.DirectObject = np
			}
		}
	}

	// WH-object fallback: a WH-subject question with no object yet may
	// still carry one right after the verb.
	if whSubject && seed.DirectObject == nil && mainVerbIndex >= 0 {
		j := mainVerbIndex + 1
		if np := TryExtractPhrase(tokens, &j); np != nil {
			seed.DirectObject = np
		}
	}

	// WH/question normalization: if a question word landed in the
	// subject slot of an auxiliary question, it is really the object
	// ("What do you have"), and the nominal between the auxiliary and
	// the verb is the subject.
	if seed.Subject != nil && IsQuestionWord(strings.ToLower(seed.Subject.Head)) &&
		seed.DirectObject == nil && auxBeforeVerb {
		seed.DirectObject = seed.Subject
		seed.Subject = nil
		for j := auxIndex + 1; j < mainVerbIndex; j++ {
			k := j
			np := TryExtractPhrase(tokens, &k)
			if np != nil && !IsQuestionWord(strings.ToLower(np.Head)) {
				seed.Subject = np
				break
			}
		}
	}

	return seed
}

// phraseStartsAt reports whether a nominal phrase could begin at i,
// which is what separates "show me the door" from "show me".
func phraseStartsAt(tokens []ParsedToken, i int) bool {
	if i >= len(tokens) {
		return false
	}
	switch tokens[i].POS {
	case POSDeterminer, POSAdjective:
		return true
	default:
		return tokens[i].POS.IsNominal()
	}
}
