// Package combined implements CombinedMatcher: the fusion of a blacklist
// keyword.Matcher, a whitelist keyword.Matcher, a site-key exception table,
// and a bounded result cache (spec.md §4.6).
package combined

import (
	"fmt"
	"strings"

	"github.com/quailmark/abpcore/internal/classify"
	"github.com/quailmark/abpcore/internal/filter"
	"github.com/quailmark/abpcore/internal/keyword"
)

// MaxCacheEntries is the default result-cache bound used when New is given
// a cacheSize <= 0; reaching the bound triggers a full flush rather than an
// eviction of the single oldest entry (spec.md §4.6: the source's cache is
// flush-on-full, not LRU).
const MaxCacheEntries = 1000

type cacheKey struct {
	location     string
	contentType  filter.ContentType
	docDomain    string
	isThirdParty bool
}

// Matcher combines blacklist and whitelist filter indexes with a whitelist
// site-key table and a query result cache. It is not safe for concurrent
// mutation; the engine serializes access.
type Matcher struct {
	interner     *classify.Interner
	blacklist    *keyword.Matcher
	whitelist    *keyword.Matcher
	keys         map[string]string
	cache        map[cacheKey]*filter.Filter
	maxCacheSize int
}

// New creates an empty Matcher backed by interner for site-key resolution.
// cacheSize bounds the result cache; a value <= 0 defaults to
// MaxCacheEntries.
func New(interner *classify.Interner, cacheSize int) *Matcher {
	if cacheSize <= 0 {
		cacheSize = MaxCacheEntries
	}
	return &Matcher{
		interner:     interner,
		blacklist:    keyword.New(),
		whitelist:    keyword.New(),
		keys:         make(map[string]string),
		cache:        make(map[cacheKey]*filter.Filter),
		maxCacheSize: cacheSize,
	}
}

// Add routes f into the blacklist matcher, the whitelist matcher, or the
// site-key table, then invalidates the cache. f must be a Blocking or
// Whitelist filter; any other kind is a caller error.
func (m *Matcher) Add(f *filter.Filter) {
	switch f.Kind {
	case filter.KindBlocking:
		m.blacklist.Add(f)
	case filter.KindWhitelist:
		if len(f.SiteKeys) > 0 {
			for _, k := range f.SiteKeys {
				m.keys[strings.ToUpper(k)] = f.Text
			}
		} else {
			m.whitelist.Add(f)
		}
	default:
		panic(fmt.Sprintf("combined: Add called with non-network filter kind %s", f.Kind))
	}
	m.flush()
}

// Remove undoes a prior Add and invalidates the cache.
func (m *Matcher) Remove(f *filter.Filter) {
	switch f.Kind {
	case filter.KindBlocking:
		m.blacklist.Remove(f)
	case filter.KindWhitelist:
		if len(f.SiteKeys) > 0 {
			for _, k := range f.SiteKeys {
				delete(m.keys, strings.ToUpper(k))
			}
		} else {
			m.whitelist.Remove(f)
		}
	default:
		panic(fmt.Sprintf("combined: Remove called with non-network filter kind %s", f.Kind))
	}
	m.flush()
}

func (m *Matcher) flush() {
	m.cache = make(map[cacheKey]*filter.Filter)
}

// MatchesAny returns the effective filter for the query, or nil if nothing
// applies. Results are cached; a cached nil (no match) is a valid entry
// distinct from a cache miss.
func (m *Matcher) MatchesAny(location string, contentType filter.ContentType, docDomain string, isThirdParty bool) *filter.Filter {
	key := cacheKey{location, contentType, docDomain, isThirdParty}
	if hit, ok := m.cache[key]; ok {
		return hit
	}

	result := m.matchesAnyInternal(location, contentType, docDomain, isThirdParty)

	if len(m.cache) >= m.maxCacheSize {
		m.cache = make(map[cacheKey]*filter.Filter)
	}
	m.cache[key] = result
	return result
}

// matchesAnyInternal tokenizes location once and walks both indexes token
// by token, so a whitelist hit at any token position wins outright while
// the first blacklist hit encountered is only returned once every token
// has been checked against the whitelist.
func (m *Matcher) matchesAnyInternal(location string, contentType filter.ContentType, docDomain string, isThirdParty bool) *filter.Filter {
	var blacklistHit *filter.Filter
	for _, tok := range keyword.Tokenize(location) {
		if wl := m.whitelist.MatchInBucket(tok, location, contentType, docDomain, isThirdParty); wl != nil {
			return wl
		}
		if blacklistHit == nil {
			if bl := m.blacklist.MatchInBucket(tok, location, contentType, docDomain, isThirdParty); bl != nil {
				blacklistHit = bl
			}
		}
	}
	return blacklistHit
}

// MatchesByKey resolves a whitelist-by-sitekey exception for location, if
// key is registered and its filter is still active for docDomain.
func (m *Matcher) MatchesByKey(location, key, docDomain string) *filter.Filter {
	text, ok := m.keys[strings.ToUpper(key)]
	if !ok {
		return nil
	}
	f, ok := m.interner.Lookup(text)
	if !ok {
		return nil
	}
	if f.Matches(location, filter.Document, docDomain, false) {
		return f
	}
	return nil
}

// IsSlowFilter reports whether f was indexed under the empty "slow"
// keyword, meaning every query against it falls through to a full regex
// match rather than being pre-filtered by a keyword bucket. Ported from
// the original Matcher::IsSlowFilter diagnostic, dropped from the
// distilled spec but useful for surfacing expensive filter lists.
func (m *Matcher) IsSlowFilter(f *filter.Filter) bool {
	var idx *keyword.Matcher
	switch f.Kind {
	case filter.KindBlocking:
		idx = m.blacklist
	case filter.KindWhitelist:
		idx = m.whitelist
	default:
		return false
	}
	kw, ok := idx.GetKeyword(f)
	return ok && kw == ""
}
