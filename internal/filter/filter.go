// Package filter defines the tagged-variant Filter type at the center of
// the engine: every parsed line becomes exactly one of Comment, Invalid,
// Blocking, Whitelist, ElemHide, or ElemHideException.
//
// The C++ ancestor of this engine expressed these as a class hierarchy
// (Filter -> ActiveFilter -> RegExpFilter -> {Blocking, Whitelist}). Go has
// no virtual dispatch worth the ceremony here, so the variants are fields on
// one struct discriminated by Kind, matched by callers with a switch.
package filter

import (
	"regexp"
	"sync"

	"github.com/quailmark/abpcore/internal/domainmap"
	"github.com/quailmark/abpcore/internal/regexsyn"
)

// Kind discriminates the Filter sum type.
type Kind uint8

const (
	KindComment Kind = iota
	KindInvalid
	KindBlocking
	KindWhitelist
	KindElemHide
	KindElemHideException
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindInvalid:
		return "invalid"
	case KindBlocking:
		return "blocking"
	case KindWhitelist:
		return "whitelist"
	case KindElemHide:
		return "elemhide"
	case KindElemHideException:
		return "elemhide-exception"
	default:
		return "unknown"
	}
}

// Filter is one parsed line of filter-list text. Text is always the
// normalized form and doubles as the intern-table key.
type Filter struct {
	Kind Kind
	Text string

	// Invalid
	Reason string

	// Blocking / Whitelist (RegExp fields)
	Pattern         string
	ContentTypeMask ContentType
	MatchCase       bool
	ThirdPartyGate  ThirdParty
	Collapse        bool     // Blocking only
	SiteKeys        []string // Whitelist only

	// ElemHide / ElemHideException
	SelectorDomain string
	Selector       string

	// Active-filter shared state (Blocking, Whitelist, ElemHide,
	// ElemHideException). An unset domain source, and one with no usable
	// domain tokens (such as ""), both mean "applies everywhere".
	domainSource      string
	domainSourceSet   bool
	domainSeparator   byte
	ignoreTrailingDot bool

	disabled bool

	domainOnce sync.Once
	domains    *domainmap.Map

	regexOnce sync.Once
	regex     *regexp.Regexp
	regexErr  error
}

// IsActive reports whether Kind is one of the four hit-capable variants.
func (f *Filter) IsActive() bool {
	switch f.Kind {
	case KindBlocking, KindWhitelist, KindElemHide, KindElemHideException:
		return true
	default:
		return false
	}
}

// SetDomainSource lazily configures the include/exclude domain table. It
// must be called before the first GetDomains/IsActiveOnDomain call.
func (f *Filter) SetDomainSource(source string, separator byte, ignoreTrailingDot bool) {
	f.domainSource = source
	f.domainSourceSet = true
	f.domainSeparator = separator
	f.ignoreTrailingDot = ignoreTrailingDot
}

// GetDomains parses the domain source on first access and caches the
// result; safe for concurrent callers.
func (f *Filter) GetDomains() *domainmap.Map {
	f.domainOnce.Do(func() {
		if !f.domainSourceSet {
			return
		}
		f.domains = domainmap.Parse(f.domainSource, f.domainSeparator, f.ignoreTrailingDot)
	})
	return f.domains
}

// IsActiveOnDomain reports whether this filter applies on docDomain,
// following the hierarchical suffix fallback rule.
func (f *Filter) IsActiveOnDomain(docDomain string) bool {
	d := f.GetDomains()
	if domainmap.Empty(d) {
		return true
	}
	return d.IsActiveOn(docDomain)
}

// Disabled reports whether the filter has been administratively disabled
// (spec.md's active-filter set is silent on this; see original_source's
// ActiveFilter::disabled_ and DESIGN.md for why it is carried here).
func (f *Filter) Disabled() bool { return f.disabled }

// SetDisabled toggles the disabled flag. Disabled filters remain indexed
// but every matcher/index treats them as absent.
func (f *Filter) SetDisabled(disabled bool) { f.disabled = disabled }

// GetRegex compiles the filter's pattern on first use and caches the
// result (and any error) for subsequent calls.
func (f *Filter) GetRegex() (*regexp.Regexp, error) {
	f.regexOnce.Do(func() {
		f.regex, f.regexErr = regexsyn.Compile(f.Pattern, f.MatchCase)
	})
	return f.regex, f.regexErr
}

// Matches implements RegExpFilter.matches (spec.md §4.7): the compiled
// regex is found in location, the third-party gate is satisfied, the
// filter is active on docDomain, and contentType intersects the mask.
func (f *Filter) Matches(location string, contentType ContentType, docDomain string, isThirdParty bool) bool {
	if f.disabled {
		return false
	}
	if f.ContentTypeMask&contentType == 0 {
		return false
	}
	if !f.ThirdPartyGate.Matches(isThirdParty) {
		return false
	}
	if !f.IsActiveOnDomain(docDomain) {
		return false
	}
	re, err := f.GetRegex()
	if err != nil || re == nil {
		return false
	}
	return re.MatchString(location)
}
