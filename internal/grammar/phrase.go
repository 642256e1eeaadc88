package grammar

import "strings"

// NounPhrase is a recursively built phrase: determiners and adjectives as
// ordered modifiers, a nominal head, and prepositional complements that
// are themselves noun phrases. Complements are owned exclusively by their
// parent; the structure is always a tree built downward, never shared.
type NounPhrase struct {
	Head      string
	Modifiers []string

	// Complements maps a preposition (possibly the phrasal "out of")
	// to the phrase it introduces.
	Complements map[string]*NounPhrase

	// Text is the reconstructed surface form of the whole phrase.
	Text string

	Coordinated      bool
	CoordinatedHeads []string
}

// ContainsWord reports whether the phrase surface form contains w as a
// whole word. Used by evidence providers for role-aware item matching.
func (np *NounPhrase) ContainsWord(w string) bool {
	if np == nil {
		return false
	}
	w = strings.ToLower(w)
	for _, part := range strings.Fields(strings.ToLower(np.Text)) {
		if part == w {
			return true
		}
	}
	return false
}

// CoreText returns the phrase surface form without leading determiners,
// the form used when matching against item names.
func (np *NounPhrase) CoreText() string {
	if np == nil {
		return ""
	}
	var parts []string
	for _, m := range np.Modifiers {
		if isDeterminerWord(m) {
			continue
		}
		parts = append(parts, m)
	}
	parts = append(parts, np.Head)
	return strings.Join(parts, " ")
}

func isDeterminerWord(w string) bool {
	switch strings.ToLower(w) {
	case "a", "an", "the", "this", "that", "these", "those", "some", "any", "my", "your":
		return true
	}
	return false
}

// TryExtractPhrase attempts to read one noun phrase starting at *idx.
// On success it advances *idx past every consumed token and returns the
// phrase; on failure it restores *idx and returns nil. Returning nil is
// not an error, it means "no phrase starts here".
func TryExtractPhrase(tokens []ParsedToken, idx *int) *NounPhrase {
	start := *idx
	if *idx >= len(tokens) {
		return nil
	}

	// Pronoun shortcut. A leading pronoun is its own phrase, unless it
	// is a relative pronoun introducing a clause ("what you have").
	// "what do you have" is a question, not a relative clause, so the
	// auxiliary+pronoun+verb pattern ahead forces the standalone reading.
	if tok := tokens[*idx]; tok.POS == POSPronoun {
		if relativePronouns[strings.ToLower(tok.Text)] && clauseFollows(tokens, *idx+1) {
			if !questionAhead(tokens, *idx+1) {
				return extractRelativeClause(tokens, idx)
			}
		}
		*idx++
		return finishPhrase(&NounPhrase{Head: tok.Text}, []string{tok.Text}, tokens, idx)
	}

	np := &NounPhrase{}
	var words []string

	// Determiners, then adjectives, as ordered modifier runs.
	for *idx < len(tokens) && tokens[*idx].POS == POSDeterminer {
		np.Modifiers = append(np.Modifiers, tokens[*idx].Text)
		words = append(words, tokens[*idx].Text)
		*idx++
	}
	for *idx < len(tokens) && tokens[*idx].POS == POSAdjective {
		np.Modifiers = append(np.Modifiers, tokens[*idx].Text)
		words = append(words, tokens[*idx].Text)
		*idx++
	}

	// One or more nominals, optionally coordinated.
	var nominals []string
	for *idx < len(tokens) {
		tok := tokens[*idx]
		if tok.POS.IsNominal() {
			nominals = append(nominals, tok.Text)
			words = append(words, tok.Text)
			*idx++
			continue
		}
		if tok.POS == POSCoordConj && len(nominals) > 0 &&
			*idx+1 < len(tokens) && tokens[*idx+1].POS.IsNominal() {
			np.Coordinated = true
			words = append(words, tok.Text)
			*idx++
			continue
		}
		break
	}

	if len(nominals) == 0 {
		*idx = start
		return nil
	}

	if np.Coordinated {
		// Right-branching coordination policy: "John and Mary" refers
		// mainly to Mary in casual speech, so the last head wins.
		np.CoordinatedHeads = append(np.CoordinatedHeads, nominals...)
		np.Head = nominals[len(nominals)-1]
	} else {
		// Compound-noun reading: "toggle document" heads on "document".
		np.Modifiers = append(np.Modifiers, nominals[:len(nominals)-1]...)
		np.Head = nominals[len(nominals)-1]
	}

	return finishPhrase(np, words, tokens, idx)
}

// finishPhrase consumes recursive prepositional complements and
// reconstructs the surface text.
func finishPhrase(np *NounPhrase, words []string, tokens []ParsedToken, idx *int) *NounPhrase {
	for *idx < len(tokens) {
		tok := tokens[*idx]
		if tok.POS != POSAdposition {
			break
		}

		prep := strings.ToLower(tok.Text)
		width := 1
		if prep == "out" && *idx+1 < len(tokens) && strings.EqualFold(tokens[*idx+1].Text, "of") {
			prep = "out of"
			width = 2
		}

		save := *idx
		*idx += width
		child := TryExtractPhrase(tokens, idx)
		if child == nil {
			// Dangling preposition: leave it for the caller.
			*idx = save
			break
		}
		if np.Complements == nil {
			np.Complements = make(map[string]*NounPhrase)
		}
		np.Complements[prep] = child
		words = append(words, prep, child.Text)
	}

	np.Text = strings.Join(words, " ")
	return np
}

// clauseFollows reports whether anything clause-like follows position i,
// i.e. the relative pronoun is not sentence-final.
func clauseFollows(tokens []ParsedToken, i int) bool {
	return i < len(tokens) && tokens[i].POS != POSPunct && tokens[i].POS != POSCoordConj
}

// questionAhead detects the auxiliary+pronoun+verb signature of an
// interrogative ("what DO YOU HAVE"), which must not be swallowed as a
// relative clause.
func questionAhead(tokens []ParsedToken, i int) bool {
	return i+2 < len(tokens) &&
		tokens[i].POS == POSAuxiliary &&
		tokens[i+1].POS == POSPronoun &&
		(tokens[i+2].POS == POSVerb || tokens[i+2].POS == POSAuxiliary)
}

// extractRelativeClause swallows "what you have" style clauses: the
// relative pronoun heads the phrase and the clause tokens extend its
// surface text up to the next coordinator, punctuation, or preposition.
func extractRelativeClause(tokens []ParsedToken, idx *int) *NounPhrase {
	head := tokens[*idx]
	words := []string{head.Text}
	*idx++

	for *idx < len(tokens) {
		tok := tokens[*idx]
		if tok.POS == POSCoordConj || tok.POS == POSPunct || tok.POS == POSAdposition {
			break
		}
		words = append(words, tok.Text)
		*idx++
	}

	return &NounPhrase{
		Head: head.Text,
		Text: strings.Join(words, " "),
	}
}
