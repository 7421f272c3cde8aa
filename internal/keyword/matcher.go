// Package keyword implements the Matcher: an index of network filters by a
// chosen short keyword, used to skip the vast majority of filters at query
// time (spec.md §4.5).
package keyword

import (
	"regexp"
	"strings"

	"github.com/quailmark/abpcore/internal/filter"
	"github.com/quailmark/abpcore/internal/regexsyn"
)

var urlTokenRe = regexp.MustCompile(`[a-z0-9%]{3,}`)

// Matcher stores RegExp filters bucketed by keyword. It is not safe for
// concurrent mutation; callers serialize access the way spec.md §5 requires
// of the engine as a whole.
type Matcher struct {
	byKeyword     map[string][]*filter.Filter
	keywordByText map[string]string
}

// New creates an empty Matcher.
func New() *Matcher {
	return &Matcher{
		byKeyword:     make(map[string][]*filter.Filter),
		keywordByText: make(map[string]string),
	}
}

// FindKeyword chooses the keyword for f: the rarest (and, on ties, longest)
// alphanumeric token in f's pattern, biasing the index toward tokens that
// keep per-URL candidate lists short. A full /regex/ pattern always gets
// the empty "slow" keyword.
func (m *Matcher) FindKeyword(f *filter.Filter) string {
	if regexsyn.IsDirectRegex(f.Pattern) {
		return ""
	}

	candidates := keywordCandidates(strings.ToLower(f.Pattern))
	if len(candidates) == 0 {
		return ""
	}

	best := candidates[0]
	bestSize := len(m.byKeyword[best])
	for _, c := range candidates[1:] {
		size := len(m.byKeyword[c])
		if size < bestSize || (size == bestSize && len(c) > len(best)) {
			best = c
			bestSize = size
		}
	}
	return best
}

// Add inserts f into its chosen keyword bucket. Repeated adds of a filter
// already present (by text) are no-ops.
func (m *Matcher) Add(f *filter.Filter) {
	if _, exists := m.keywordByText[f.Text]; exists {
		return
	}
	kw := m.FindKeyword(f)
	m.byKeyword[kw] = append(m.byKeyword[kw], f)
	m.keywordByText[f.Text] = kw
}

// Remove deletes f from its bucket, leaving every other filter in that
// bucket untouched.
func (m *Matcher) Remove(f *filter.Filter) {
	kw, ok := m.keywordByText[f.Text]
	if !ok {
		return
	}
	delete(m.keywordByText, f.Text)

	bucket := m.byKeyword[kw]
	for i, bf := range bucket {
		if bf.Text == f.Text {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(m.byKeyword, kw)
	} else {
		m.byKeyword[kw] = bucket
	}
}

// HasFilter reports whether f is currently indexed.
func (m *Matcher) HasFilter(f *filter.Filter) bool {
	_, ok := m.keywordByText[f.Text]
	return ok
}

// GetKeyword returns the keyword f was indexed under, if any.
func (m *Matcher) GetKeyword(f *filter.Filter) (string, bool) {
	kw, ok := m.keywordByText[f.Text]
	return kw, ok
}

// MatchesAny tokenizes location and returns the first indexed filter (in
// insertion order within each bucket) whose Matches predicate holds,
// consulting the slow ("") bucket last.
func (m *Matcher) MatchesAny(location string, contentType filter.ContentType, docDomain string, isThirdParty bool) *filter.Filter {
	for _, tok := range Tokenize(location) {
		if hit := m.MatchInBucket(tok, location, contentType, docDomain, isThirdParty); hit != nil {
			return hit
		}
	}
	return nil
}

// MatchInBucket scans a single keyword bucket, returning the first match.
func (m *Matcher) MatchInBucket(keyword, location string, contentType filter.ContentType, docDomain string, isThirdParty bool) *filter.Filter {
	for _, f := range m.byKeyword[keyword] {
		if f.Matches(location, contentType, docDomain, isThirdParty) {
			return f
		}
	}
	return nil
}

// Tokenize lowercases location and splits it into candidate keywords,
// always appending the empty-string sentinel that reaches the slow bucket.
func Tokenize(location string) []string {
	toks := urlTokenRe.FindAllString(strings.ToLower(location), -1)
	return append(toks, "")
}

// keywordCandidates replicates
// [^a-z0-9%*][a-z0-9%]{3,}(?=[^a-z0-9%*]) by hand: Go's RE2 engine has no
// lookahead, and the trailing assertion here is load-bearing (unlike the
// URL tokenizer, a candidate is not allowed to run to the end of the
// pattern text).
func keywordCandidates(s string) []string {
	var out []string
	i := 0
	n := len(s)
	for i < n {
		if !isKeywordDelimiter(s[i]) {
			i++
			continue
		}
		j := i + 1
		for j < n && isKeywordToken(s[j]) {
			j++
		}
		runLen := j - i - 1
		if runLen >= 3 && j < n && isKeywordDelimiter(s[j]) {
			out = append(out, s[i+1:j])
			i = j
			continue
		}
		i++
	}
	return out
}

func isKeywordToken(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '%'
}

func isKeywordDelimiter(c byte) bool {
	return !isKeywordToken(c) && c != '*'
}
