// Package engine ties the classifier, matcher, and element-hide index into
// one guarded unit: the thing a caller actually loads filter lists into and
// queries (spec.md §5).
package engine

import (
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/quailmark/abpcore/internal/classify"
	"github.com/quailmark/abpcore/internal/combined"
	"github.com/quailmark/abpcore/internal/elemhide"
	"github.com/quailmark/abpcore/internal/filter"
	"github.com/quailmark/abpcore/internal/filtertext"
)

// Engine owns one intern table, one CombinedMatcher, and one ElemHide
// index, guarded by a single RWMutex: writers (AddFilterText,
// RemoveFilterText) and MatchesAny, which fills the result cache, take it
// exclusively; the other readers (GetSelectors, MatchesByKey, ...) take it
// shared.
type Engine struct {
	mu           sync.RWMutex
	interner     *classify.Interner
	matcher      *combined.Matcher
	elemhide     *elemhide.Index
	warmPoolSize int
}

// New creates an empty Engine. cacheSize bounds the CombinedMatcher's result
// cache (a value <= 0 defaults to combined.MaxCacheEntries); warmPoolSize
// bounds the concurrency of WarmUp (a value <= 0 defaults to
// runtime.NumCPU()).
func New(cacheSize, warmPoolSize int) *Engine {
	if warmPoolSize <= 0 {
		warmPoolSize = runtime.NumCPU()
	}
	interner := classify.NewInterner()
	return &Engine{
		interner:     interner,
		matcher:      combined.New(interner, cacheSize),
		elemhide:     elemhide.New(),
		warmPoolSize: warmPoolSize,
	}
}

// AddFilterText classifies raw filter text and, if it produced an active
// filter, indexes it. It returns the resulting Filter (nil for blank
// input, non-nil but inert for Comment/Invalid).
func (e *Engine) AddFilterText(raw string) *filter.Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addLocked(raw)
}

func (e *Engine) addLocked(raw string) *filter.Filter {
	f := e.interner.FromText(raw)
	if f == nil {
		return nil
	}
	e.indexLocked(f)
	return f
}

func (e *Engine) indexLocked(f *filter.Filter) {
	switch f.Kind {
	case filter.KindBlocking, filter.KindWhitelist:
		e.matcher.Add(f)
	case filter.KindElemHide, filter.KindElemHideException:
		e.elemhide.Add(f)
	}
}

// RemoveFilterText removes a previously added filter by its raw text,
// looking it up by normalized form. Removing text that was never added, or
// that classified as Comment/Invalid, is a no-op.
func (e *Engine) RemoveFilterText(raw string) {
	norm := filtertext.Normalize(raw)
	if norm == "" {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.interner.Lookup(norm)
	if !ok {
		return
	}
	switch f.Kind {
	case filter.KindBlocking, filter.KindWhitelist:
		e.matcher.Remove(f)
	case filter.KindElemHide, filter.KindElemHideException:
		e.elemhide.Remove(f)
	}
}

// MatchesAny reports the effective network filter for a request, or nil.
// It takes the lock exclusively because the matcher writes its result cache.
func (e *Engine) MatchesAny(location string, contentType filter.ContentType, docDomain string, isThirdParty bool) *filter.Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matcher.MatchesAny(location, contentType, docDomain, isThirdParty)
}

// MatchesByKey resolves a whitelist-by-sitekey exception.
func (e *Engine) MatchesByKey(location, key, docDomain string) *filter.Filter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matcher.MatchesByKey(location, key, docDomain)
}

// IsSlowFilter reports whether f fell into the keyword matcher's slow
// (empty-keyword) bucket.
func (e *Engine) IsSlowFilter(f *filter.Filter) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matcher.IsSlowFilter(f)
}

// GetSelectors returns element-hiding selectors active on domain.
func (e *Engine) GetSelectors(domain string, specific bool) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.elemhide.GetSelectors(domain, specific)
}

// GetException resolves the active exception, if any, covering f.
func (e *Engine) GetException(f *filter.Filter, docDomain string) *filter.Filter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.elemhide.GetException(f, docDomain)
}

// FilterCount returns the number of distinct filters interned so far.
func (e *Engine) FilterCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.interner.Size()
}

// WarmUp forces every interned filter's lazy regex compile and domain-map
// parse to run now, spread across a bounded goroutine pool, so steady-state
// queries never pay the sync.Once check on a cold filter. It complements
// rather than replaces the per-Filter sync.Once guards: a query racing a
// concurrent WarmUp still observes a correct, race-free value either way.
func (e *Engine) WarmUp() {
	e.mu.RLock()
	filters := e.interner.All()
	e.mu.RUnlock()

	p := pool.New().WithMaxGoroutines(e.warmPoolSize)
	for _, f := range filters {
		f := f
		if !f.IsActive() {
			continue
		}
		p.Go(func() {
			if f.Kind == filter.KindBlocking || f.Kind == filter.KindWhitelist {
				_, _ = f.GetRegex()
			}
			f.GetDomains()
		})
	}
	p.Wait()
}
