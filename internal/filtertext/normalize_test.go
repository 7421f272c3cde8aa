package filtertext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty stays empty", "", ""},
		{"strips internal spaces from a network filter", " || ads . example . com ^ ", "||ads.example.com^"},
		{"comment keeps internal spacing but trims outer", "  ! this is a comment  ", "! this is a comment"},
		{"raw css selector form keeps two hashes", "example.com ## .ad-banner", "example.com##.ad-banner"},
		{"raw css selector exception keeps #@#", "example.com #@# .ad-banner", "example.com#@#.ad-banner"},
		{"legacy single-hash form keeps one hash", "#div(id=header)", "#div(id=header)"},
		{"legacy single-hash exception keeps #@", "#@div(id=header)", "#@div(id=header)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeLegacyFormDoesNotBecomeRawSelectorForm(t *testing.T) {
	// A second Normalize pass over already-normalized legacy-form text must
	// reproduce the same single-hash marker, not drift into the two-hash
	// raw-selector form (which would be reparsed as a literal CSS selector
	// instead of the tag(attr=val) legacy syntax).
	once := Normalize("#div(id=header)")
	twice := Normalize(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, "#div(id=header)", twice)
}
