// Package tagger provides the part-of-speech tagger that feeds the
// grammar layer. Static is a deterministic two-pass tagger: dictionary
// and suffix baseline, then contextual correction. It exists so the
// pipeline runs without an external NLP service; the engine only sees
// the Tagger seam.
package tagger

import (
	"strings"
	"unicode"

	"npcmind/internal/grammar"
)

// Static tags words from a built-in lexicon with suffix heuristics for
// unknown words.
type Static struct {
	lexicon map[string]grammar.PartOfSpeech
	lemmas  map[string]string
}

// NewStatic returns a tagger loaded with the default lexicon.
func NewStatic() *Static {
	t := &Static{
		lexicon: make(map[string]grammar.PartOfSpeech),
		lemmas:  make(map[string]string),
	}
	t.loadDefaultLexicon()
	return t
}

// Tag tokenizes and tags an utterance. Punctuation tokens are dropped;
// downstream extraction never sees them.
func (t *Static) Tag(text string) []grammar.ParsedToken {
	words := tokenize(text)
	if len(words) == 0 {
		return nil
	}

	tags := make([]grammar.PartOfSpeech, len(words))
	for i, word := range words {
		tags[i] = t.baseline(word)
	}

	// Contextual correction: the baseline is word-local, so ambiguous
	// words ("open", "have") get fixed up from their neighbors.
	for i := range tags {
		var prev grammar.PartOfSpeech = grammar.POSOther
		if i > 0 {
			prev = tags[i-1]
		}

		// "[open] the door": an utterance-initial adjective or noun
		// followed by a determiner reads as an imperative verb.
		if i == 0 && len(tags) > 1 &&
			(tags[0] == grammar.POSAdjective || tags[0] == grammar.POSNoun) &&
			tags[1] == grammar.POSDeterminer {
			tags[0] = grammar.POSVerb
			continue
		}

		// "the [open] door": a verb reading after a determiner or
		// adjective is really a noun or adjective.
		if (prev == grammar.POSDeterminer || prev == grammar.POSAdjective) && tags[i] == grammar.POSVerb {
			if i+1 < len(tags) && tags[i+1].IsNominal() {
				tags[i] = grammar.POSAdjective
			} else {
				tags[i] = grammar.POSNoun
			}
			continue
		}

		// "to [open]": infinitive marker forces the verb reading.
		if i > 0 && strings.EqualFold(words[i-1], "to") && tags[i].IsNominal() {
			tags[i] = grammar.POSVerb
			continue
		}

		// "out of [stock]": a nominal reading wins after a preposition,
		// except after the infinitive marker.
		if prev == grammar.POSAdposition && !strings.EqualFold(words[i-1], "to") &&
			tags[i] == grammar.POSVerb {
			tags[i] = grammar.POSNoun
		}
	}

	tokens := make([]grammar.ParsedToken, 0, len(words))
	for i, word := range words {
		if tags[i] == grammar.POSPunct {
			continue
		}
		tokens = append(tokens, grammar.ParsedToken{
			Text:  word,
			Lemma: t.lemma(word),
			POS:   tags[i],
		})
	}
	return tokens
}

func (t *Static) baseline(word string) grammar.PartOfSpeech {
	lower := strings.ToLower(word)
	if pos, ok := t.lexicon[lower]; ok {
		return pos
	}
	return inferPOS(word)
}

func (t *Static) lemma(word string) string {
	lower := strings.ToLower(word)
	if base, ok := t.lemmas[lower]; ok {
		return base
	}
	return lower
}

func inferPOS(word string) grammar.PartOfSpeech {
	if len(word) == 1 && unicode.IsPunct(rune(word[0])) {
		return grammar.POSPunct
	}
	if isNumeric(word) {
		return grammar.POSNumeral
	}

	runes := []rune(word)
	if len(runes) > 0 && unicode.IsUpper(runes[0]) {
		return grammar.POSProperNoun
	}

	lower := strings.ToLower(word)
	switch {
	case strings.HasSuffix(lower, "ly"):
		return grammar.POSAdverb
	case strings.HasSuffix(lower, "ing") || strings.HasSuffix(lower, "ed"):
		return grammar.POSVerb
	case strings.HasSuffix(lower, "ful") || strings.HasSuffix(lower, "less") ||
		strings.HasSuffix(lower, "ous") || strings.HasSuffix(lower, "ive") ||
		strings.HasSuffix(lower, "able") || strings.HasSuffix(lower, "ible"):
		return grammar.POSAdjective
	}
	return grammar.POSNoun
}

func isNumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(word) > 0
}

// tokenize splits on anything that is not a letter, digit, or
// apostrophe. Standalone punctuation never survives.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func (t *Static) loadDefaultLexicon() {
	add := func(pos grammar.PartOfSpeech, words ...string) {
		for _, w := range words {
			t.lexicon[w] = pos
		}
	}

	add(grammar.POSDeterminer,
		"the", "a", "an", "this", "that", "these", "those", "my", "your",
		"his", "its", "our", "their", "some", "any", "no", "every", "each",
		"all", "both", "another")

	add(grammar.POSAdposition,
		"in", "on", "at", "to", "for", "with", "by", "from", "of", "about",
		"into", "through", "during", "before", "after", "above", "below",
		"between", "under", "over", "against", "among", "around", "behind",
		"beside", "beyond", "near", "toward", "towards", "upon", "within",
		"without", "across", "along", "inside", "outside", "out")

	// Modals tag as auxiliaries; the seed extractor treats both alike.
	add(grammar.POSAuxiliary,
		"is", "are", "was", "were", "be", "been", "being", "am",
		"do", "does", "did",
		"can", "could", "will", "would", "shall", "should", "may", "might", "must")

	add(grammar.POSCoordConj, "and", "or", "but", "nor", "yet")

	// The full WH set tags as pronouns so question-word handling in the
	// grammar layer sees every word it special-cases.
	add(grammar.POSPronoun,
		"i", "you", "he", "she", "it", "we", "they", "me", "him", "her",
		"us", "them", "who", "whom", "whose", "what", "which",
		"where", "when", "why", "how",
		"myself", "yourself", "himself", "herself", "itself",
		"ourselves", "themselves")

	add(grammar.POSAdverb,
		"not", "very", "quite", "rather", "really", "too", "just", "only",
		"now", "then", "here", "there", "always", "never", "often",
		"sometimes", "please")

	add(grammar.POSAdjective,
		"old", "new", "good", "bad", "great", "small", "large", "big",
		"little", "young", "long", "short", "cheap", "expensive", "rusty",
		"iron", "silver", "golden", "red", "blue", "green", "black",
		"white", "fresh", "magic", "healing", "open", "closed")

	add(grammar.POSVerb,
		"have", "has", "had", "having",
		"go", "went", "come", "came", "say", "said", "see", "saw",
		"know", "knew", "take", "took", "taken", "get", "got", "give",
		"gave", "show", "showed", "shown", "tell", "told", "buy", "bought",
		"sell", "sold", "want", "wanted", "need", "needed", "look",
		"looked", "opened", "close", "describe", "greet", "trade",
		"carry", "stock", "cost", "costs", "hello", "goodbye", "thanks")

	add(grammar.POSNoun,
		"sword", "shield", "potion", "bread", "loaf", "key", "door",
		"chest", "room", "shop", "store", "item", "items", "ware",
		"wares", "inventory", "gold", "coin", "coins", "price", "stuff",
		"things", "goods", "merchant", "shopkeeper", "guard", "traveler")

	// Irregular lemmas the suffix rules cannot recover.
	for surface, base := range map[string]string{
		"has": "have", "had": "have", "having": "have",
		"went": "go", "came": "come", "said": "say", "saw": "see",
		"knew": "know", "took": "take", "taken": "take", "got": "get",
		"gave": "give", "showed": "show", "shown": "show", "told": "tell",
		"bought": "buy", "sold": "sell", "looked": "look",
		"opened": "open", "wanted": "want", "needed": "need",
		"is": "be", "are": "be", "was": "be", "were": "be", "am": "be",
		"been": "be", "being": "be", "does": "do", "did": "do",
		"costs": "cost", "items": "item", "wares": "ware",
		"coins": "coin", "things": "thing", "goods": "good",
	} {
		t.lemmas[surface] = base
	}
}
