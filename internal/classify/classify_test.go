package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quailmark/abpcore/internal/filter"
)

func TestFromTextComment(t *testing.T) {
	in := NewInterner()
	f := in.FromText("! this is a comment")
	assert.Equal(t, filter.KindComment, f.Kind)
}

func TestFromTextBlankLineIsNil(t *testing.T) {
	in := NewInterner()
	assert.Nil(t, in.FromText("   "))
	assert.Nil(t, in.FromText(""))
}

func TestFromTextBlockingAndWhitelist(t *testing.T) {
	in := NewInterner()

	blocking := in.FromText("||ads.example.com^$script,third-party")
	assert.Equal(t, filter.KindBlocking, blocking.Kind)
	assert.True(t, blocking.ContentTypeMask.Has(filter.Script))
	assert.False(t, blocking.ContentTypeMask.Has(filter.Image))
	assert.Equal(t, filter.ThirdPartyYes, blocking.ThirdPartyGate)

	whitelist := in.FromText("@@||example.com^$document")
	assert.Equal(t, filter.KindWhitelist, whitelist.Kind)
	assert.True(t, whitelist.ContentTypeMask.Has(filter.Document))
}

func TestFromTextEmptyPatternIsInvalid(t *testing.T) {
	in := NewInterner()
	f := in.FromText("@@")
	assert.Equal(t, filter.KindInvalid, f.Kind)
}

func TestFromTextUnknownOptionIsInvalid(t *testing.T) {
	in := NewInterner()
	f := in.FromText("ads.example.com$not-a-real-option")
	assert.Equal(t, filter.KindInvalid, f.Kind)
	assert.Contains(t, f.Reason, "unknown option")
}

func TestFromTextInterningReturnsSameInstance(t *testing.T) {
	in := NewInterner()
	f1 := in.FromText("ads.example.com")
	f2 := in.FromText("ads.example.com")
	assert.Same(t, f1, f2)
	assert.Equal(t, 1, in.Size())
}

func TestFromTextExceptionDropsDocumentByDefault(t *testing.T) {
	in := NewInterner()
	f := in.FromText("@@ads.example.com")
	assert.False(t, f.ContentTypeMask.Has(filter.Document))
}

func TestFromTextExceptionWithSitekeyForcesDocumentOnly(t *testing.T) {
	in := NewInterner()
	f := in.FromText("@@ads.example.com$sitekey=abc123")
	assert.Equal(t, filter.Document, f.ContentTypeMask)
	assert.Equal(t, []string{"abc123"}, f.SiteKeys)
}

func TestFromTextElemHideSimple(t *testing.T) {
	in := NewInterner()
	f := in.FromText("example.com##.ad-banner")
	assert.Equal(t, filter.KindElemHide, f.Kind)
	assert.Equal(t, "example.com", f.SelectorDomain)
	assert.Equal(t, ".ad-banner", f.Selector)
}

func TestFromTextElemHideException(t *testing.T) {
	in := NewInterner()
	f := in.FromText("example.com#@#.ad-banner")
	assert.Equal(t, filter.KindElemHideException, f.Kind)
}

func TestFromTextElemHideLegacyIDSelector(t *testing.T) {
	in := NewInterner()
	f := in.FromText("#div(id=header)")
	assert.Equal(t, filter.KindElemHide, f.Kind)
	assert.Equal(t, "div#header", f.Selector)
}

func TestFromTextElemHideDuplicateIDIsInvalid(t *testing.T) {
	in := NewInterner()
	f := in.FromText("#div(id=a)(id=b)")
	assert.Equal(t, filter.KindInvalid, f.Kind)
	assert.Equal(t, "filter_elemhide_duplicate_id", f.Reason)
}

func TestFromTextElemHideNoCriteriaIsInvalid(t *testing.T) {
	in := NewInterner()
	f := in.FromText("#*")
	assert.Equal(t, filter.KindInvalid, f.Kind)
	assert.Equal(t, "filter_elemhide_nocriteria", f.Reason)
}

func TestFromTextDirectRegexInvalidRegexIsInvalid(t *testing.T) {
	in := NewInterner()
	f := in.FromText("/(unclosed/")
	assert.Equal(t, filter.KindInvalid, f.Kind)
}

func TestLookupAfterFromText(t *testing.T) {
	in := NewInterner()
	f := in.FromText("ads.example.com")
	got, ok := in.Lookup(f.Text)
	assert.True(t, ok)
	assert.Same(t, f, got)

	_, ok = in.Lookup("never-added")
	assert.False(t, ok)
}
