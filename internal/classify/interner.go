// Package classify implements Filter.from_text: turning a normalized line
// into one of the six Filter variants, and the engine-scoped intern table
// that makes repeated filter text resolve to the same *filter.Filter.
//
// The C++ ancestor kept known_filters_ as static, process-wide state. That
// is re-expressed here as Interner, an explicit field owned by the engine
// (spec.md §9 design note), so independent engines never share filters.
package classify

import (
	"strings"
	"sync"

	"github.com/quailmark/abpcore/internal/filter"
	"github.com/quailmark/abpcore/internal/filtertext"
)

// Interner maps normalized filter text to the Filter instance it produces,
// so repeated occurrences of the same line share one object.
type Interner struct {
	mu    sync.Mutex
	table map[string]*filter.Filter
}

// NewInterner creates an empty intern table.
func NewInterner() *Interner {
	return &Interner{table: make(map[string]*filter.Filter)}
}

// FromText normalizes raw, classifies it if not already interned, and
// returns the resulting Filter. Empty input (after normalization) returns
// nil, never a zero-value Filter.
func (in *Interner) FromText(raw string) *filter.Filter {
	norm := filtertext.Normalize(raw)
	if norm == "" {
		return nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if f, ok := in.table[norm]; ok {
		return f
	}

	f := classifyText(norm)
	if f == nil {
		// classifyText should never return nil for non-empty input, but the
		// C++ ancestor inserted a sub-factory's result into the intern table
		// without checking for null (spec.md §9); guard here instead.
		return nil
	}

	in.table[norm] = f
	return f
}

// Lookup resolves previously interned text without classifying it, used by
// CombinedMatcher.matches_by_key to turn a stored filter text back into a
// *filter.Filter.
func (in *Interner) Lookup(text string) (*filter.Filter, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	f, ok := in.table[text]
	return f, ok
}

// All returns every interned filter, in no particular order. Used by the
// engine's pre-warm pool.
func (in *Interner) All() []*filter.Filter {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]*filter.Filter, 0, len(in.table))
	for _, f := range in.table {
		out = append(out, f)
	}
	return out
}

// Size returns the number of interned filters (diagnostics only).
func (in *Interner) Size() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.table)
}

func classifyText(norm string) *filter.Filter {
	if strings.HasPrefix(norm, "!") {
		return &filter.Filter{Kind: filter.KindComment, Text: norm}
	}

	if strings.Contains(norm, "#") && filtertext.ElemHideShape.MatchString(norm) {
		return elemHideFromText(norm)
	}

	return regexpFilterFromText(norm)
}
