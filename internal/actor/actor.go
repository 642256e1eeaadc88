// Package actor is the read-only view of the conversation partner the
// classifier consults: who the NPC is, what role it plays, and what it
// carries. Nothing here is mutated by the NLU pipeline.
package actor

import "strings"

// Item is one inventory entry. Aliases are alternative names players
// use for it ("loaf" for "Bread Loaf").
type Item struct {
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Cost    int      `yaml:"cost" json:"cost"`
}

// Candidates returns every name the item answers to, canonical first.
func (i Item) Candidates() []string {
	out := make([]string, 0, 1+len(i.Aliases))
	out = append(out, i.Name)
	out = append(out, i.Aliases...)
	return out
}

// Matches reports whether s equals the item name or one of its aliases,
// case-insensitively.
func (i Item) Matches(s string) bool {
	for _, c := range i.Candidates() {
		if strings.EqualFold(c, s) {
			return true
		}
	}
	return false
}

// Actor is the NPC the player is talking to.
type Actor struct {
	Name      string `yaml:"name" json:"name"`
	Role      string `yaml:"role" json:"role"`
	Inventory []Item `yaml:"inventory,omitempty" json:"inventory,omitempty"`
}

// FindItem resolves a name or alias to an inventory item.
func (a Actor) FindItem(name string) (Item, bool) {
	for _, item := range a.Inventory {
		if item.Matches(name) {
			return item, true
		}
	}
	return Item{}, false
}
