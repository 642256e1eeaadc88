// Package lexicon loads the phrase lists the evidence providers match
// utterances against. A lexicon file is a JSON object mapping an intent
// name to its phrases. Lexicons are loaded once and never mutated.
package lexicon

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed defaults/positive.json
var defaultPositive []byte

//go:embed defaults/negative.json
var defaultNegative []byte

// Lexicon maps an intent name to the phrases that evidence it.
type Lexicon map[string][]string

// IntentNames returns the intent names in sorted order, for
// deterministic provider iteration.
func (l Lexicon) IntentNames() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse decodes a lexicon from JSON and rejects empty entries.
func Parse(data []byte) (Lexicon, error) {
	var lex Lexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	for intent, phrases := range lex {
		if strings.TrimSpace(intent) == "" {
			return nil, fmt.Errorf("lexicon contains an empty intent name")
		}
		if len(phrases) == 0 {
			return nil, fmt.Errorf("intent %q has no phrases", intent)
		}
	}
	return lex, nil
}

// Load reads a lexicon file from disk.
func Load(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	lex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// DefaultPositive returns the embedded positive-intent phrase lists.
func DefaultPositive() Lexicon {
	lex, err := Parse(defaultPositive)
	if err != nil {
		panic(fmt.Sprintf("embedded positive lexicon is invalid: %v", err))
	}
	return lex
}

// DefaultNegative returns the embedded negative-intent phrase lists.
func DefaultNegative() Lexicon {
	lex, err := Parse(defaultNegative)
	if err != nil {
		panic(fmt.Sprintf("embedded negative lexicon is invalid: %v", err))
	}
	return lex
}
