package grammar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tok(text string, pos PartOfSpeech) ParsedToken {
	return ParsedToken{Text: text, Lemma: text, POS: pos}
}

func TestTryExtractPhrase_Simple(t *testing.T) {
	tokens := []ParsedToken{
		tok("the", POSDeterminer),
		tok("rusty", POSAdjective),
		tok("key", POSNoun),
	}

	idx := 0
	np := TryExtractPhrase(tokens, &idx)
	if np == nil {
		t.Fatal("expected a phrase")
	}
	if idx != 3 {
		t.Errorf("cursor = %d, want 3", idx)
	}
	if np.Head != "key" {
		t.Errorf("head = %q, want %q", np.Head, "key")
	}
	if diff := cmp.Diff([]string{"the", "rusty"}, np.Modifiers); diff != "" {
		t.Errorf("modifiers mismatch (-want +got):\n%s", diff)
	}
	if np.Text != "the rusty key" {
		t.Errorf("text = %q, want %q", np.Text, "the rusty key")
	}
}

func TestTryExtractPhrase_FailureResetsCursor(t *testing.T) {
	tokens := []ParsedToken{
		tok("the", POSDeterminer),
		tok("quickly", POSAdverb),
	}

	idx := 0
	if np := TryExtractPhrase(tokens, &idx); np != nil {
		t.Fatalf("expected no phrase, got %+v", np)
	}
	if idx != 0 {
		t.Errorf("cursor = %d, want 0 after failed extraction", idx)
	}
}

func TestTryExtractPhrase_CompoundNoun(t *testing.T) {
	tokens := []ParsedToken{
		tok("toggle", POSNoun),
		tok("document", POSNoun),
	}

	idx := 0
	np := TryExtractPhrase(tokens, &idx)
	if np == nil {
		t.Fatal("expected a phrase")
	}
	if np.Head != "document" {
		t.Errorf("head = %q, want %q", np.Head, "document")
	}
	if diff := cmp.Diff([]string{"toggle"}, np.Modifiers); diff != "" {
		t.Errorf("modifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestTryExtractPhrase_Coordination(t *testing.T) {
	tokens := []ParsedToken{
		tok("john", POSProperNoun),
		tok("and", POSCoordConj),
		tok("mary", POSProperNoun),
	}

	idx := 0
	np := TryExtractPhrase(tokens, &idx)
	if np == nil {
		t.Fatal("expected a phrase")
	}
	if !np.Coordinated {
		t.Error("expected coordinated phrase")
	}
	// Right-branching policy: the last coordinated nominal is the head.
	if np.Head != "mary" {
		t.Errorf("head = %q, want %q", np.Head, "mary")
	}
	if diff := cmp.Diff([]string{"john", "mary"}, np.CoordinatedHeads); diff != "" {
		t.Errorf("coordinated heads mismatch (-want +got):\n%s", diff)
	}
	if np.Text != "john and mary" {
		t.Errorf("text = %q, want %q", np.Text, "john and mary")
	}
}

func TestTryExtractPhrase_NestedComplements(t *testing.T) {
	tokens := []ParsedToken{
		tok("key", POSNoun),
		tok("from", POSAdposition),
		tok("chest", POSNoun),
		tok("in", POSAdposition),
		tok("room", POSNoun),
	}

	idx := 0
	np := TryExtractPhrase(tokens, &idx)
	if np == nil {
		t.Fatal("expected a phrase")
	}
	if np.Head != "key" {
		t.Errorf("head = %q, want %q", np.Head, "key")
	}
	from := np.Complements["from"]
	if from == nil {
		t.Fatal("expected 'from' complement")
	}
	if from.Head != "chest" {
		t.Errorf("from.head = %q, want %q", from.Head, "chest")
	}
	in := from.Complements["in"]
	if in == nil {
		t.Fatal("expected nested 'in' complement")
	}
	if in.Head != "room" {
		t.Errorf("in.head = %q, want %q", in.Head, "room")
	}
	if np.Text != "key from chest in room" {
		t.Errorf("text = %q, want %q", np.Text, "key from chest in room")
	}
}

func TestTryExtractPhrase_PhrasalOutOf(t *testing.T) {
	tokens := []ParsedToken{
		tok("key", POSNoun),
		tok("out", POSAdposition),
		tok("of", POSAdposition),
		tok("reach", POSNoun),
	}

	idx := 0
	np := TryExtractPhrase(tokens, &idx)
	if np == nil {
		t.Fatal("expected a phrase")
	}
	comp := np.Complements["out of"]
	if comp == nil {
		t.Fatalf("expected phrasal 'out of' complement, got %v", np.Complements)
	}
	if comp.Head != "reach" {
		t.Errorf("complement head = %q, want %q", comp.Head, "reach")
	}
}

func TestTryExtractPhrase_DanglingPreposition(t *testing.T) {
	tokens := []ParsedToken{
		tok("key", POSNoun),
		tok("from", POSAdposition),
	}

	idx := 0
	np := TryExtractPhrase(tokens, &idx)
	if np == nil {
		t.Fatal("expected a phrase")
	}
	if len(np.Complements) != 0 {
		t.Errorf("dangling preposition must not attach, got %v", np.Complements)
	}
	// The dangling preposition is left unconsumed for the caller.
	if idx != 1 {
		t.Errorf("cursor = %d, want 1", idx)
	}
}

func TestTryExtractPhrase_RelativeClause(t *testing.T) {
	tokens := []ParsedToken{
		tok("what", POSPronoun),
		tok("you", POSPronoun),
		tok("have", POSVerb),
	}

	idx := 0
	np := TryExtractPhrase(tokens, &idx)
	if np == nil {
		t.Fatal("expected a phrase")
	}
	if np.Head != "what" {
		t.Errorf("head = %q, want %q", np.Head, "what")
	}
	if np.Text != "what you have" {
		t.Errorf("text = %q, want %q", np.Text, "what you have")
	}
	if idx != 3 {
		t.Errorf("cursor = %d, want 3", idx)
	}
}

func TestTryExtractPhrase_InterrogativeNotRelative(t *testing.T) {
	// "what do you have" must keep "what" standalone: the auxiliary+
	// pronoun+verb pattern marks a question, not a relative clause.
	tokens := []ParsedToken{
		tok("what", POSPronoun),
		tok("do", POSAuxiliary),
		tok("you", POSPronoun),
		tok("have", POSVerb),
	}

	idx := 0
	np := TryExtractPhrase(tokens, &idx)
	if np == nil {
		t.Fatal("expected a phrase")
	}
	if np.Head != "what" || np.Text != "what" {
		t.Errorf("got head=%q text=%q, want standalone 'what'", np.Head, np.Text)
	}
	if idx != 1 {
		t.Errorf("cursor = %d, want 1", idx)
	}
}

func TestTryExtractPhrase_Idempotent(t *testing.T) {
	tokens := []ParsedToken{
		tok("the", POSDeterminer),
		tok("key", POSNoun),
		tok("from", POSAdposition),
		tok("the", POSDeterminer),
		tok("chest", POSNoun),
	}

	i1, i2 := 0, 0
	first := TryExtractPhrase(tokens, &i1)
	second := TryExtractPhrase(tokens, &i2)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("extraction is not idempotent (-first +second):\n%s", diff)
	}
	if i1 != i2 {
		t.Errorf("cursors diverged: %d vs %d", i1, i2)
	}
}
