// Package grammar turns part-of-speech-tagged tokens into syntactic
// structure: noun phrases with modifiers and prepositional complements,
// and per-utterance intent seeds (verb, subject, objects, prepositions).
//
// The package consumes tokens from an external tagger and performs no I/O.
// Extraction is deterministic and idempotent: the same token sequence
// always yields a structurally equal result.
package grammar

// PartOfSpeech is the closed tag set produced by the external tagger.
// Punctuation tokens are filtered out before tokens reach this package,
// but the tag is kept so tagger adapters can express it.
type PartOfSpeech int

const (
	POSOther PartOfSpeech = iota
	POSNoun
	POSProperNoun
	POSPronoun
	POSVerb
	POSAuxiliary
	POSAdjective
	POSAdverb
	POSDeterminer
	POSAdposition
	POSCoordConj
	POSNumeral
	POSPunct
)

var posNames = map[PartOfSpeech]string{
	POSOther:      "OTHER",
	POSNoun:       "NOUN",
	POSProperNoun: "PROPN",
	POSPronoun:    "PRON",
	POSVerb:       "VERB",
	POSAuxiliary:  "AUX",
	POSAdjective:  "ADJ",
	POSAdverb:     "ADV",
	POSDeterminer: "DET",
	POSAdposition: "ADP",
	POSCoordConj:  "CCONJ",
	POSNumeral:    "NUM",
	POSPunct:      "PUNCT",
}

func (p PartOfSpeech) String() string {
	if name, ok := posNames[p]; ok {
		return name
	}
	return "OTHER"
}

// IsNominal reports whether the tag can head or extend a noun phrase.
func (p PartOfSpeech) IsNominal() bool {
	return p == POSNoun || p == POSProperNoun || p == POSPronoun
}

// ParsedToken is one tagged token of an utterance. Immutable; produced
// once per utterance by the external tagger.
type ParsedToken struct {
	Text  string
	Lemma string
	POS   PartOfSpeech
}

// Canonical returns the lemma when the tagger supplied one, else the
// surface text. Verbs are recorded in seeds under their canonical form.
func (t ParsedToken) Canonical() string {
	if t.Lemma != "" {
		return t.Lemma
	}
	return t.Text
}

// questionWords is the closed WH-word set used for subject/object
// disambiguation in questions.
var questionWords = map[string]bool{
	"who": true, "whom": true, "whose": true,
	"what": true, "which": true,
	"where": true, "when": true, "why": true, "how": true,
}

// relativePronouns can introduce a relative clause ("what you have").
var relativePronouns = map[string]bool{
	"what": true, "which": true, "that": true,
	"who": true, "whom": true, "whose": true,
}

// dativePronouns is the closed set eligible for the indirect-object
// reading ("show me the door").
var dativePronouns = map[string]bool{
	"me": true, "you": true, "him": true,
	"her": true, "us": true, "them": true,
}

// IsQuestionWord reports whether w (lowercased) is a WH-question word.
func IsQuestionWord(w string) bool {
	return questionWords[w]
}

// personalPronouns covers the common personal forms beyond the dative
// and WH sets.
var personalPronouns = map[string]bool{
	"i": true, "me": true, "you": true, "he": true, "him": true,
	"she": true, "her": true, "it": true, "we": true, "us": true,
	"they": true, "them": true,
}

// IsPronounWord reports whether w (lowercased) reads as a pronoun.
// Pronoun-headed phrases are poor queries for item resolution.
func IsPronounWord(w string) bool {
	return personalPronouns[w] || questionWords[w] || relativePronouns[w]
}
