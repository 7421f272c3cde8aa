package classify

import (
	"regexp"
	"strings"

	"github.com/quailmark/abpcore/internal/filter"
	"github.com/quailmark/abpcore/internal/filtertext"
)

var attrRuleRe = regexp.MustCompile(`\(([\w-]+)([$^*]?=)([^()"]*)\)`)

func elemHideFromText(norm string) *filter.Filter {
	m := filtertext.ElemHideShape.FindStringSubmatch(norm)
	domainSource, isException, tagName, attrRules, rawSelector := m[1], m[2] == "@", m[3], m[4], m[5]

	selector, reason := buildLegacySelector(tagName, attrRules, rawSelector)
	if reason != "" {
		return &filter.Filter{Kind: filter.KindInvalid, Text: norm, Reason: reason}
	}

	kind := filter.KindElemHide
	if isException {
		kind = filter.KindElemHideException
	}

	f := &filter.Filter{
		Kind:           kind,
		Text:           norm,
		SelectorDomain: domainSource,
		Selector:       selector,
	}
	// Element-hiding domain lists preserve trailing dots (spec.md §3).
	f.SetDomainSource(domainSource, ',', false)
	return f
}

// buildLegacySelector turns the raw #selector form (rawSelector already the
// final CSS text) or the legacy tag(attr=val)(attr2=val2) form into a CSS
// selector string.
func buildLegacySelector(tagName, attrRules, rawSelector string) (selector, invalidReason string) {
	if rawSelector != "" {
		return rawSelector, ""
	}

	rules := attrRuleRe.FindAllStringSubmatch(attrRules, -1)
	if tagName == "*" && len(rules) == 0 {
		return "", "filter_elemhide_nocriteria"
	}

	var b strings.Builder
	if tagName != "*" {
		b.WriteString(tagName)
	}

	sawID := false
	for _, r := range rules {
		attr, op, val := r[1], r[2], r[3]
		switch {
		case attr == "id" && op == "=":
			if sawID {
				return "", "filter_elemhide_duplicate_id"
			}
			sawID = true
			b.WriteString("#" + val)
		case attr == "id":
			if sawID {
				return "", "filter_elemhide_duplicate_id"
			}
			sawID = true
			b.WriteString("[" + attr + op + "\"" + val + "\"]")
		case attr == "class" && op == "=":
			b.WriteString("." + val)
		default:
			b.WriteString("[" + attr + op + "\"" + val + "\"]")
		}
	}

	return b.String(), ""
}
