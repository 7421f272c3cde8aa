// Package filtertext implements the whitespace normalization applied to
// every filter line before it is classified.
package filtertext

import "regexp"

// ElemHideShape is the canonical element-hiding detector regex (spec.md §6):
// group 1 is the domain list, group 2 is the "@" exception marker, groups
// 3/4 are the legacy tag(attr=val) form, group 5 is a raw CSS selector.
var ElemHideShape = regexp.MustCompile(
	`^([^/*|@"!]*?)#(@)?(?:([\w-]+|\*)((?:\([\w-]+(?:[$^*]?=[^()"]*)?\))*)|#([^{}]+))$`,
)

var (
	lineBreaks  = regexp.MustCompile(`[^\S ]`)
	leadingBang = regexp.MustCompile(`^\s*!`)
)

// Normalize strips whitespace from a raw filter line, preserving internal
// spacing for comments and the CSS-selector body of element-hiding rules.
func Normalize(text string) string {
	if text == "" {
		return text
	}

	text = lineBreaks.ReplaceAllString(text, "")

	if leadingBang.MatchString(text) {
		return trimOuter(text)
	}

	if m := ElemHideShape.FindStringSubmatch(text); m != nil {
		prefix, isException, tagName, attrRules, rawSelector := m[1], m[2] == "@", m[3], m[4], m[5]

		// The shape regex has two mutually exclusive bodies: the legacy
		// tag(attr=val) form (single '#') and the raw CSS selector form
		// (second, literal '#'). The reconstructed marker must carry the
		// same hash count as whichever body actually matched, or a
		// second classification pass would parse it as the other form.
		body := rawSelector
		marker := "##"
		if rawSelector == "" {
			body = tagName + attrRules
			marker = "#"
		}
		if isException {
			marker = "#@" + marker[1:]
		}

		return stripAllSpace(prefix) + marker + trimOuter(body)
	}

	return stripAllSpace(text)
}

func stripAllSpace(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			b = append(b, s[i])
		}
	}
	return string(b)
}

func trimOuter(s string) string {
	start := 0
	for start < len(s) && isSpace(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
