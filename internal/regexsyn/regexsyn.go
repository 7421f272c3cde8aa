// Package regexsyn translates the Adblock wildcard/anchor pattern
// mini-language into a Go-compatible regular expression source string.
//
// The transform is ported from the teacher's WebKit-targeted
// internal/converter/regex.go, retargeted at Go's RE2 engine instead of
// WebKit's content-blocker regex subset: RE2 accepts a wider vocabulary
// (\w, disjunctions, {n,m}) so most of the teacher's downstream validation
// against WebKit's stricter subset no longer applies, but the character-by-
// character wildcard-to-regex walk is the same idea.
package regexsyn

import (
	"regexp"
	"strings"
)

// separatorClass matches an Adblock "^" separator: any byte that is not a
// letter, digit, or one of _ - . %, or end of string.
const separatorClass = `(?:[\x00-\x24\x26-\x2C\x2F\x3A-\x40\x5B-\x5E\x60\x7B-\x80]|$)`

// extendedAnchor anchors at the URL's scheme + host-prefix position.
//
// The upstream form of this anchor carries a trailing negative lookahead
// (?!\/) forbidding a further slash right after the scheme slashes. RE2 has
// no lookaround support, so this anchor has no such assertion: \/+ may match
// fewer than all of the slashes. Results are unaffected when the rest of
// the pattern cannot start with a slash (e.g. ||ads.example.com^); when it
// can, the anchor is looser, e.g. ||/ads matches "http://ads".
const extendedAnchor = `^[\w\-]+:\/+(?:[^.\/]+\.)*?`

var (
	runsOfStars = regexp.MustCompile(`\*+`)
	trailingSep = regexp.MustCompile(`\^\|$`)
)

const (
	escapedStar  = `\*`
	escapedCaret = `\^`
)

// BuildSource converts an Adblock pattern (already stripped of any leading
// "@@" and trailing "$options") into a regex source suitable for
// regexp.Compile. It does not add the case-insensitivity flag; callers
// combine that with Compile.
func BuildSource(pattern string) string {
	if isDirectRegex(pattern) {
		return pattern[1 : len(pattern)-1]
	}

	s := pattern

	// 1. Collapse runs of * to one *.
	s = runsOfStars.ReplaceAllString(s, "*")

	// 2. Strip a single leading *.
	s = strings.TrimPrefix(s, "*")

	// 3. Strip a single trailing *.
	s = strings.TrimSuffix(s, "*")

	// 4. Replace ^| at the end with ^.
	if trailingSep.MatchString(s) {
		s = s[:len(s)-1]
	}

	// 5. Escape every non-word character with a backslash.
	s = escapeNonWord(s)

	// 6. Replace escaped \* with .*
	s = strings.ReplaceAll(s, escapedStar, ".*")

	// 7. Replace escaped \^ with the separator class.
	s = strings.ReplaceAll(s, escapedCaret, separatorClass)

	// 8. Replace a leading \|\| with the extended anchor.
	if strings.HasPrefix(s, `\|\|`) {
		s = extendedAnchor + s[4:]
	} else if strings.HasPrefix(s, `\|`) {
		// 9. Replace a leading \| with ^.
		s = "^" + s[2:]
	}

	// 10. Replace a trailing \| with $.
	if strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-2] + "$"
	}

	return s
}

// Compile builds and compiles the regex for pattern, honoring matchCase.
func Compile(pattern string, matchCase bool) (*regexp.Regexp, error) {
	src := BuildSource(pattern)
	if !matchCase {
		src = "(?i)" + src
	}
	return regexp.Compile(src)
}

// IsDirectRegex reports whether pattern is a /regex/ literal rather than
// Adblock wildcard syntax.
func IsDirectRegex(pattern string) bool {
	return isDirectRegex(pattern)
}

func isDirectRegex(pattern string) bool {
	return len(pattern) > 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/")
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func escapeNonWord(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isWordByte(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('\\')
			b.WriteByte(c)
		}
	}
	return b.String()
}
