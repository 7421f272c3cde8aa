package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quailmark/abpcore/internal/filter"
)

func mustFilter(pattern string) *filter.Filter {
	return &filter.Filter{
		Kind:            filter.KindBlocking,
		Text:            pattern,
		Pattern:         pattern,
		ContentTypeMask: filter.AllTypesMask,
		ThirdPartyGate:  filter.ThirdPartyAny,
	}
}

func TestKeywordCandidates(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		expected []string
	}{
		{"realistic pattern yields every bounded run", "||ads.example.com^", []string{"ads", "example", "com"}},
		{"bounded on both sides", ".ads.", []string{"ads"}},
		{"run touching end of string yields no candidate", ".ads", nil},
		{"run shorter than three characters yields no candidate", ".ad.", nil},
		{"asterisk is not a boundary", "*ads.", nil},
		{"no delimiters at all yields no candidate", "adsbannertracker", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keywordCandidates(tt.pattern)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFindKeywordDirectRegexIsSlow(t *testing.T) {
	m := New()
	f := &filter.Filter{Kind: filter.KindBlocking, Pattern: "/ads-[0-9]+/"}
	assert.Equal(t, "", m.FindKeyword(f))
}

func TestFindKeywordPrefersLessCrowdedBucket(t *testing.T) {
	m := New()
	m.Add(mustFilter(".aaa."))
	m.Add(mustFilter(".aaa.x"))
	m.Add(mustFilter(".bbb.x"))

	got := m.FindKeyword(mustFilter(".bbb.aaa."))
	assert.Equal(t, "bbb", got)
}

func TestFindKeywordTieBreaksOnLongerCandidate(t *testing.T) {
	m := New()
	m.Add(mustFilter(".aaa.x"))
	m.Add(mustFilter(".aaa.y"))
	m.Add(mustFilter(".cccc.x"))
	m.Add(mustFilter(".cccc.y"))

	got := m.FindKeyword(mustFilter(".aaa.cccc."))
	assert.Equal(t, "cccc", got)
}

func TestAddIsIdempotentAndRemoveIsPrecise(t *testing.T) {
	m := New()

	a := mustFilter(".shared.a")
	b := mustFilter(".shared.b")
	m.Add(a)
	m.Add(b)
	m.Add(a) // repeat add is a no-op

	assert.True(t, m.HasFilter(a))
	assert.True(t, m.HasFilter(b))

	m.Remove(a)
	assert.False(t, m.HasFilter(a))
	assert.True(t, m.HasFilter(b))

	// b is still reachable through the shared bucket; a is not.
	assert.Same(t, b, m.MatchesAny("http://x.shared.b/", filter.Script, "", false))
	assert.Nil(t, m.MatchesAny("http://x.shared.a/", filter.Script, "", false))
}

func TestMatchesAnyFindsFirstMatch(t *testing.T) {
	m := New()
	f := mustFilter("ads.example.com")
	m.Add(f)

	hit := m.MatchesAny("http://ads.example.com/banner.js", filter.Script, "", false)
	assert.Same(t, f, hit)

	assert.Nil(t, m.MatchesAny("http://clean.example.com/app.js", filter.Script, "", false))
}

func TestTokenizeAppendsSentinel(t *testing.T) {
	toks := Tokenize("http://ads.example.com/x")
	assert.Contains(t, toks, "ads")
	assert.Contains(t, toks, "example")
	assert.Equal(t, "", toks[len(toks)-1])
}
