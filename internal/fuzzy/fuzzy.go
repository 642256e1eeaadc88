// Package fuzzy implements character n-gram similarity search over small
// candidate lists: lexicon phrases, inventory item names, tool names.
//
// Scoring is Jaccard set overlap between n-gram vectors. Each candidate
// is scored independently, so the engine fans the work out across a
// bounded worker pool and joins before the final stable sort. Results
// are deterministic: equal scores keep insertion order.
package fuzzy

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Options configures n-gram vectorization and result filtering.
type Options struct {
	MinNgramSize      int
	MaxNgramSize      int
	IncludeWordNgrams bool
	MinimumSimilarity float64
}

// DefaultOptions returns the tuning used by the evidence providers.
func DefaultOptions() Options {
	return Options{
		MinNgramSize:      1,
		MaxNgramSize:      2,
		IncludeWordNgrams: true,
		MinimumSimilarity: 0.3,
	}
}

// Validate fails fast on configurations that could never score sanely.
func (o Options) Validate() error {
	if o.MinNgramSize < 1 {
		return fmt.Errorf("min ngram size must be >= 1, got %d", o.MinNgramSize)
	}
	if o.MaxNgramSize < o.MinNgramSize {
		return fmt.Errorf("max ngram size %d < min ngram size %d", o.MaxNgramSize, o.MinNgramSize)
	}
	if o.MinimumSimilarity < 0 || o.MinimumSimilarity > 1 {
		return fmt.Errorf("minimum similarity must be in [0,1], got %f", o.MinimumSimilarity)
	}
	return nil
}

// Result is one scored candidate. Score is in [0,1].
type Result struct {
	Text  string
	Score float64
}

// Index holds pre-vectorized candidates for repeated queries.
type Index struct {
	opts    Options
	items   []string
	vectors []map[string]struct{}
}

// NewIndex vectorizes items under opts. Item order is preserved and
// serves as the tie-break for equal scores.
func NewIndex(items []string, opts Options) (*Index, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search options: %w", err)
	}

	ix := &Index{
		opts:    opts,
		items:   make([]string, len(items)),
		vectors: make([]map[string]struct{}, len(items)),
	}
	copy(ix.items, items)
	for i, item := range items {
		ix.vectors[i] = vectorize(normalize(item), opts)
	}
	return ix, nil
}

// Len returns the number of indexed candidates.
func (ix *Index) Len() int { return len(ix.items) }

// Search scores every candidate against the query and returns the ones
// at or above MinimumSimilarity, descending by score, ties in insertion
// order. An empty or whitespace query yields no results.
//
// An integer query i with 0 <= i < Len() is an ID shortcut: it returns
// items[i] alone with score 1.0, bypassing fuzzy scoring entirely.
func (ix *Index) Search(query string) []Result {
	q := normalize(query)
	if q == "" {
		return nil
	}

	if id, err := strconv.Atoi(q); err == nil && id >= 0 && id < len(ix.items) {
		return []Result{{Text: ix.items[id], Score: 1.0}}
	}

	qvec := vectorize(q, ix.opts)
	scores := make([]float64, len(ix.items))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range ix.items {
		i := i
		g.Go(func() error {
			scores[i] = jaccard(qvec, ix.vectors[i])
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; this is the join point

	results := make([]Result, 0, len(ix.items))
	for i, score := range scores {
		if score >= ix.opts.MinimumSimilarity {
			results = append(results, Result{Text: ix.items[i], Score: score})
		}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	return results
}

// Best returns the top result, if any.
func (ix *Index) Best(query string) (Result, bool) {
	results := ix.Search(query)
	if len(results) == 0 {
		return Result{}, false
	}
	return results[0], true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// vectorize builds the set of character n-grams of every size in
// [MinNgramSize, MaxNgramSize], plus whole-word grams when enabled.
func vectorize(s string, opts Options) map[string]struct{} {
	grams := make(map[string]struct{})
	runes := []rune(s)
	for n := opts.MinNgramSize; n <= opts.MaxNgramSize; n++ {
		if n > len(runes) {
			break
		}
		for i := 0; i+n <= len(runes); i++ {
			grams[string(runes[i:i+n])] = struct{}{}
		}
	}
	if opts.IncludeWordNgrams {
		for _, w := range strings.Fields(s) {
			grams["\x00"+w] = struct{}{}
		}
	}
	return grams
}

// jaccard is intersection size over union size; 0 when either set is
// empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for g := range small {
		if _, ok := large[g]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
