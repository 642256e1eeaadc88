package grammar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractSeed_OpenTheDoor(t *testing.T) {
	tokens := []ParsedToken{
		tok("open", POSVerb),
		tok("the", POSDeterminer),
		tok("door", POSNoun),
	}

	seed := ExtractSeed(tokens)
	if seed.Verb != "open" {
		t.Errorf("verb = %q, want %q", seed.Verb, "open")
	}
	if seed.DirectObject == nil {
		t.Fatal("expected a direct object")
	}
	if seed.DirectObject.Head != "door" {
		t.Errorf("direct object head = %q, want %q", seed.DirectObject.Head, "door")
	}
	if diff := cmp.Diff([]string{"the"}, seed.DirectObject.Modifiers); diff != "" {
		t.Errorf("modifiers mismatch (-want +got):\n%s", diff)
	}
	if seed.DirectObject.Text != "the door" {
		t.Errorf("direct object text = %q, want %q", seed.DirectObject.Text, "the door")
	}
}

func TestExtractSeed_NestedComplements(t *testing.T) {
	tokens := []ParsedToken{
		tok("take", POSVerb),
		tok("key", POSNoun),
		tok("from", POSAdposition),
		tok("chest", POSNoun),
		tok("in", POSAdposition),
		tok("room", POSNoun),
	}

	seed := ExtractSeed(tokens)
	if seed.Verb != "take" {
		t.Errorf("verb = %q, want %q", seed.Verb, "take")
	}
	do := seed.DirectObject
	if do == nil || do.Head != "key" {
		t.Fatalf("direct object = %+v, want head 'key'", do)
	}
	from := do.Complements["from"]
	if from == nil || from.Head != "chest" {
		t.Fatalf("complements['from'] = %+v, want head 'chest'", from)
	}
	in := from.Complements["in"]
	if in == nil || in.Head != "room" {
		t.Fatalf("nested complements['in'] = %+v, want head 'room'", in)
	}
}

func TestExtractSeed_WHSubjectQuestion(t *testing.T) {
	tokens := []ParsedToken{
		tok("who", POSPronoun),
		tok("opened", POSVerb),
		tok("the", POSDeterminer),
		tok("door", POSNoun),
	}

	seed := ExtractSeed(tokens)
	if seed.Subject == nil || seed.Subject.Head != "who" {
		t.Fatalf("subject = %+v, want head 'who'", seed.Subject)
	}
	if seed.DirectObject == nil || seed.DirectObject.Head != "door" {
		t.Fatalf("direct object = %+v, want head 'door'", seed.DirectObject)
	}
}

func TestExtractSeed_AuxiliaryQuestion(t *testing.T) {
	// "what do you have": the question word is the object, not the
	// subject, because the auxiliary precedes the real subject "you".
	tokens := []ParsedToken{
		tok("what", POSPronoun),
		tok("do", POSAuxiliary),
		tok("you", POSPronoun),
		tok("have", POSVerb),
	}

	seed := ExtractSeed(tokens)
	if seed.Verb != "have" {
		t.Errorf("verb = %q, want %q", seed.Verb, "have")
	}
	if seed.Subject == nil || seed.Subject.Head != "you" {
		t.Fatalf("subject = %+v, want head 'you'", seed.Subject)
	}
	if seed.DirectObject == nil || seed.DirectObject.Head != "what" {
		t.Fatalf("direct object = %+v, want head 'what'", seed.DirectObject)
	}
}

func TestExtractSeed_CopulaQuestion(t *testing.T) {
	// "Is the door open?": no main verb, so the auxiliary serves as the
	// verb and the inverted structure makes the post-verbal phrase the
	// subject.
	tokens := []ParsedToken{
		tok("is", POSAuxiliary),
		tok("the", POSDeterminer),
		tok("door", POSNoun),
		tok("open", POSAdjective),
	}

	seed := ExtractSeed(tokens)
	if seed.Verb != "is" {
		t.Errorf("verb = %q, want %q", seed.Verb, "is")
	}
	if seed.Subject == nil || seed.Subject.Head != "door" {
		t.Fatalf("subject = %+v, want head 'door'", seed.Subject)
	}
}

func TestExtractSeed_DativeShift(t *testing.T) {
	tokens := []ParsedToken{
		tok("show", POSVerb),
		tok("me", POSPronoun),
		tok("the", POSDeterminer),
		tok("door", POSNoun),
	}

	seed := ExtractSeed(tokens)
	if seed.IndirectObject == nil || seed.IndirectObject.Head != "me" {
		t.Fatalf("indirect object = %+v, want head 'me'", seed.IndirectObject)
	}
	if seed.DirectObject == nil || seed.DirectObject.Head != "door" {
		t.Fatalf("direct object = %+v, want head 'door'", seed.DirectObject)
	}
}

func TestExtractSeed_BarePronounObjectIsDirect(t *testing.T) {
	// "show me" with nothing following: no dative reading.
	tokens := []ParsedToken{
		tok("show", POSVerb),
		tok("me", POSPronoun),
	}

	seed := ExtractSeed(tokens)
	if seed.IndirectObject != nil {
		t.Errorf("indirect object = %+v, want nil", seed.IndirectObject)
	}
	if seed.DirectObject == nil || seed.DirectObject.Head != "me" {
		t.Fatalf("direct object = %+v, want head 'me'", seed.DirectObject)
	}
}

func TestExtractSeed_PendingPreposition(t *testing.T) {
	// "look at the door": the preposition follows the verb directly, so
	// no object absorbs it; it lands in the top-level map instead.
	tokens := []ParsedToken{
		tok("look", POSVerb),
		tok("at", POSAdposition),
		tok("the", POSDeterminer),
		tok("door", POSNoun),
	}

	seed := ExtractSeed(tokens)
	if seed.Verb != "look" {
		t.Errorf("verb = %q, want %q", seed.Verb, "look")
	}
	at := seed.Prepositions["at"]
	if at == nil || at.Head != "door" {
		t.Fatalf("prepositions['at'] = %+v, want head 'door'", at)
	}
	if seed.DirectObject != nil {
		t.Errorf("direct object = %+v, want nil", seed.DirectObject)
	}
}

func TestExtractSeed_PronounObjectComplement(t *testing.T) {
	// "tell me about the bread": the pronoun absorbs "about the bread"
	// as a complement, so the object phrase must look through the
	// pronoun head to find the thing the utterance is about.
	tokens := []ParsedToken{
		tok("tell", POSVerb),
		tok("me", POSPronoun),
		tok("about", POSAdposition),
		tok("the", POSDeterminer),
		tok("bread", POSNoun),
	}

	seed := ExtractSeed(tokens)
	do := seed.DirectObject
	if do == nil || do.Head != "me" {
		t.Fatalf("direct object = %+v, want head 'me'", do)
	}
	about := do.Complements["about"]
	if about == nil || about.Head != "bread" {
		t.Fatalf("complements['about'] = %+v, want head 'bread'", about)
	}

	obj := seed.ObjectPhrase()
	if obj == nil || obj.Head != "bread" {
		t.Fatalf("object phrase = %+v, want head 'bread'", obj)
	}
	if got := obj.CoreText(); got != "bread" {
		t.Errorf("object phrase core text = %q, want %q", got, "bread")
	}
}

func TestExtractSeed_DuplicatePrepositionKeepsPhrase(t *testing.T) {
	// "look at the door and at the window": the second "at" phrase
	// cannot land in the occupied preposition slot, so it competes for
	// an object role instead of being dropped.
	tokens := []ParsedToken{
		tok("look", POSVerb),
		tok("at", POSAdposition),
		tok("the", POSDeterminer),
		tok("door", POSNoun),
		tok("and", POSCoordConj),
		tok("at", POSAdposition),
		tok("the", POSDeterminer),
		tok("window", POSNoun),
	}

	seed := ExtractSeed(tokens)
	at := seed.Prepositions["at"]
	if at == nil || at.Head != "door" {
		t.Fatalf("prepositions['at'] = %+v, want head 'door'", at)
	}
	if seed.DirectObject == nil || seed.DirectObject.Head != "window" {
		t.Fatalf("direct object = %+v, want head 'window'", seed.DirectObject)
	}
}

func TestExtractSeed_NoVerb(t *testing.T) {
	tokens := []ParsedToken{
		tok("the", POSDeterminer),
		tok("sword", POSNoun),
	}

	seed := ExtractSeed(tokens)
	if seed.HasVerb() {
		t.Errorf("verb = %q, want none", seed.Verb)
	}
	if seed.DirectObject == nil || seed.DirectObject.Head != "sword" {
		t.Fatalf("direct object = %+v, want head 'sword'", seed.DirectObject)
	}
}

func TestExtractSeed_Empty(t *testing.T) {
	seed := ExtractSeed(nil)
	if seed.HasVerb() || seed.Subject != nil || seed.DirectObject != nil {
		t.Errorf("empty input must yield an empty seed, got %+v", seed)
	}
}

func TestExtractSeed_Idempotent(t *testing.T) {
	tokens := []ParsedToken{
		tok("give", POSVerb),
		tok("me", POSPronoun),
		tok("the", POSDeterminer),
		tok("bread", POSNoun),
		tok("from", POSAdposition),
		tok("the", POSDeterminer),
		tok("shelf", POSNoun),
	}

	first := ExtractSeed(tokens)
	second := ExtractSeed(tokens)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("extraction is not idempotent (-first +second):\n%s", diff)
	}
}
