package classify

import (
	"regexp"
	"strings"

	"github.com/quailmark/abpcore/internal/filter"
	"github.com/quailmark/abpcore/internal/regexsyn"
)

var (
	optionsTailRe = regexp.MustCompile(`\$(~?[\w-]+(?:=[^,\s]+)?(?:,~?[\w-]+(?:=[^,\s]+)?)*)$`)
	schemeAnchorRe = regexp.MustCompile(`^\|?[\w-]+:`)
)

type parsedOptions struct {
	mask             filter.ContentType
	maskIsAll        bool
	explicitDocument bool
	matchCase        bool
	thirdParty       filter.ThirdParty
	collapse         bool
	domainSource     string
	hasDomain        bool
	siteKeys         []string
}

func regexpFilterFromText(norm string) *filter.Filter {
	body := norm
	blocking := true
	if strings.HasPrefix(body, "@@") {
		blocking = false
		body = body[2:]
	}

	pattern := body
	optsStr := ""
	if loc := optionsTailRe.FindStringSubmatchIndex(body); loc != nil {
		pattern = body[:loc[0]]
		optsStr = body[loc[2]:loc[3]]
	}

	if pattern == "" {
		return &filter.Filter{Kind: filter.KindInvalid, Text: norm, Reason: "empty pattern"}
	}

	opts, invalidReason := parseOptions(optsStr)
	if invalidReason != "" {
		return &filter.Filter{Kind: filter.KindInvalid, Text: norm, Reason: invalidReason}
	}

	if opts.maskIsAll {
		opts.mask = filter.AllTypesMask
	}

	if !blocking {
		unrestrictedOrDocument := opts.mask == filter.AllTypesMask || opts.mask&filter.Document != 0
		if unrestrictedOrDocument && !opts.explicitDocument && !schemeAnchorRe.MatchString(pattern) {
			opts.mask &^= filter.Document
		}
		if len(opts.siteKeys) > 0 {
			opts.mask = filter.Document
		}
	}

	kind := filter.KindBlocking
	if !blocking {
		kind = filter.KindWhitelist
	}

	f := &filter.Filter{
		Kind:            kind,
		Text:            norm,
		Pattern:         pattern,
		ContentTypeMask: opts.mask,
		MatchCase:       opts.matchCase,
		ThirdPartyGate:  opts.thirdParty,
	}
	if blocking {
		f.Collapse = opts.collapse
	} else {
		f.SiteKeys = opts.siteKeys
	}
	if opts.hasDomain {
		f.SetDomainSource(opts.domainSource, '|', true)
	}

	// Direct /regex/ patterns are validated eagerly so a bad one becomes
	// Invalid; wildcard-syntax patterns are always syntactically valid
	// after translation and are compiled lazily on first query.
	if regexsyn.IsDirectRegex(pattern) {
		if _, err := regexsyn.Compile(pattern, opts.matchCase); err != nil {
			return &filter.Filter{Kind: filter.KindInvalid, Text: norm, Reason: "invalid regex: " + err.Error()}
		}
	}

	return f
}

func parseOptions(optsStr string) (parsedOptions, string) {
	opts := parsedOptions{maskIsAll: true}
	if optsStr == "" {
		return opts, ""
	}

	for _, raw := range strings.Split(optsStr, ",") {
		if raw == "" {
			continue
		}

		name := raw
		value := ""
		hasValue := false
		if idx := strings.IndexByte(raw, '='); idx != -1 {
			name = raw[:idx]
			value = raw[idx+1:]
			hasValue = true
		}

		negated := strings.HasPrefix(name, "~")
		bare := strings.TrimPrefix(name, "~")
		optionKey := strings.ToUpper(strings.ReplaceAll(bare, "-", "_"))

		switch optionKey {
		case "MATCH_CASE":
			opts.matchCase = !negated
		case "DOMAIN":
			if hasValue {
				opts.domainSource = value
				opts.hasDomain = true
			}
		case "THIRD_PARTY":
			if negated {
				opts.thirdParty = filter.ThirdPartyNo
			} else {
				opts.thirdParty = filter.ThirdPartyYes
			}
		case "COLLAPSE":
			opts.collapse = !negated
		case "SITEKEY":
			if hasValue {
				opts.siteKeys = strings.Split(value, "|")
			}
		default:
			ct, ok := filter.TypeByOptionName(optionKey)
			if !ok {
				return opts, "unknown option " + name
			}
			if negated {
				if opts.maskIsAll {
					opts.mask = filter.DefaultContentType
					opts.maskIsAll = false
				}
				opts.mask &^= ct
			} else {
				if opts.maskIsAll {
					opts.mask = 0
					opts.maskIsAll = false
				}
				opts.mask |= ct
				if optionKey == "DOCUMENT" {
					opts.explicitDocument = true
				}
			}
		}
	}

	return opts, ""
}
