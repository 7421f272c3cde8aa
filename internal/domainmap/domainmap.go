// Package domainmap implements the include/exclude domain applicability
// table shared by every active (hit-capable) filter.
package domainmap

import "strings"

// Map is a parsed domain applicability table. The empty-string key holds
// the default answer used when no more specific entry matches.
type Map struct {
	entries           map[string]bool
	ignoreTrailingDot bool
}

// Parse tokenizes source by separator and builds a Map. Each token may be
// prefixed with ~ to negate it. Domain keys are uppercased; when
// ignoreTrailingDot is set, trailing dots are stripped from each token
// before it is stored.
func Parse(source string, separator byte, ignoreTrailingDot bool) *Map {
	m := &Map{
		entries:           make(map[string]bool),
		ignoreTrailingDot: ignoreTrailingDot,
	}

	hasIncludes := false
	hasAnyToken := false
	tokens := strings.Split(source, string(separator))

	// Fast path: exactly one non-negated token.
	if len(tokens) == 1 {
		tok := normalizeToken(tokens[0], ignoreTrailingDot)
		if tok != "" && !strings.HasPrefix(tok, "~") {
			m.entries[""] = false
			m.entries[strings.ToUpper(tok)] = true
			return m
		}
	}

	for _, raw := range tokens {
		tok := normalizeToken(raw, ignoreTrailingDot)
		if tok == "" {
			continue
		}

		included := true
		if strings.HasPrefix(tok, "~") {
			tok = tok[1:]
			included = false
		} else {
			hasIncludes = true
		}
		if tok == "" {
			continue
		}
		hasAnyToken = true
		m.entries[strings.ToUpper(tok)] = included
	}

	// A source with no usable tokens at all (blank, or nothing but
	// separators) leaves entries genuinely empty, so Empty reports it
	// truthfully rather than via a synthesized default-active entry.
	if hasAnyToken {
		m.entries[""] = !hasIncludes
	}
	return m
}

func normalizeToken(tok string, ignoreTrailingDot bool) string {
	if ignoreTrailingDot {
		tok = strings.TrimRight(tok, ".")
	}
	return tok
}

// Empty reports whether m holds no entries: m is nil (no domain source was
// set) or its source had no usable domain tokens.
func Empty(m *Map) bool {
	return m == nil || len(m.entries) == 0
}

// IsActiveOn walks the domain hierarchy of docDomain, returning the value
// of the nearest ancestor entry, or the default ("") entry if none matches.
func (m *Map) IsActiveOn(docDomain string) bool {
	if m == nil || len(m.entries) == 0 {
		return true
	}
	if docDomain == "" {
		return m.entries[""]
	}

	d := docDomain
	if m.ignoreTrailingDot {
		d = strings.TrimRight(d, ".")
	}
	d = strings.ToUpper(d)

	for {
		if v, ok := m.entries[d]; ok {
			return v
		}
		idx := strings.IndexByte(d, '.')
		if idx == -1 {
			break
		}
		d = d[idx+1:]
	}
	return m.entries[""]
}
