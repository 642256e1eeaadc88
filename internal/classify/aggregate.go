package classify

import "sort"

// Aggregate collapses intent candidates into the final ranking:
// one entry per (name, slots) identity at its maximum confidence,
// suppressed names dropped regardless of score, descending by
// confidence with the identity key breaking ties deterministically.
func Aggregate(wm *WorkingMemory) []Intent {
	suppressed := wm.SuppressedNames()

	best := make(map[string]Intent)
	var order []string
	for _, in := range wm.Intents() {
		if _, drop := suppressed[in.Name]; drop {
			continue
		}
		key := in.SlotKey()
		cur, seen := best[key]
		if !seen {
			best[key] = in
			order = append(order, key)
			continue
		}
		if in.Confidence > cur.Confidence {
			best[key] = in
		}
	}

	out := make([]Intent, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Confidence != out[b].Confidence {
			return out[a].Confidence > out[b].Confidence
		}
		return out[a].SlotKey() < out[b].SlotKey()
	})
	return out
}
