package domainmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAndIsActiveOn(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		domain    string
		wantActive bool
	}{
		{"single include, exact match", "example.com", "example.com", true},
		{"single include, unrelated domain", "example.com", "other.com", false},
		{"single include, subdomain falls through to suffix", "example.com", "sub.example.com", true},
		{"single include, default is inactive", "example.com", "", false},
		{"negated only, default active", "~example.com", "other.com", true},
		{"negated only, excluded domain inactive", "~example.com", "example.com", false},
		{"mixed include and exclude", "example.com|~ads.example.com", "ads.example.com", false},
		{"mixed include and exclude, sibling active", "example.com|~ads.example.com", "shop.example.com", true},
		{"empty source treated as unrestricted", "", "anything.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Parse(tt.source, '|', false)
			assert.Equal(t, tt.wantActive, m.IsActiveOn(tt.domain))
		})
	}
}

func TestEmpty(t *testing.T) {
	assert.True(t, Empty(nil))
	assert.True(t, Empty(Parse("", '|', false)))
	assert.False(t, Empty(Parse("example.com", '|', false)))
}

func TestIgnoreTrailingDot(t *testing.T) {
	m := Parse("example.com.", '|', true)
	assert.True(t, m.IsActiveOn("example.com"))
	assert.True(t, m.IsActiveOn("example.com."))
}

func TestNilMapIsActiveOnAnything(t *testing.T) {
	var m *Map
	assert.True(t, m.IsActiveOn("example.com"))
}
