package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeBitsAreDistinct(t *testing.T) {
	seen := ContentType(0)
	for _, ct := range []ContentType{
		Other, Script, Image, Stylesheet, Object, Subdocument, Document, XBL,
		Ping, XMLHTTPRequest, ObjectSubrequest, DTD, Media, Font, Background,
		Popup, ElemHide,
	} {
		assert.Zero(t, seen&ct, "content type %d collides with an earlier bit", ct)
		seen |= ct
	}
	assert.Equal(t, AllTypesMask, seen)
}

func TestDefaultContentTypeExcludesPopupAndElemHide(t *testing.T) {
	assert.False(t, DefaultContentType.Has(Popup))
	assert.False(t, DefaultContentType.Has(ElemHide))
	assert.True(t, DefaultContentType.Has(Script))
}

func TestTypeByOptionName(t *testing.T) {
	ct, ok := TypeByOptionName("SCRIPT")
	assert.True(t, ok)
	assert.Equal(t, Script, ct)

	_, ok = TypeByOptionName("NOT_A_TYPE")
	assert.False(t, ok)
}

func TestThirdPartyMatches(t *testing.T) {
	tests := []struct {
		name         string
		gate         ThirdParty
		isThirdParty bool
		want         bool
	}{
		{"any accepts first-party", ThirdPartyAny, false, true},
		{"any accepts third-party", ThirdPartyAny, true, true},
		{"yes rejects first-party", ThirdPartyYes, false, false},
		{"yes accepts third-party", ThirdPartyYes, true, true},
		{"no accepts first-party", ThirdPartyNo, false, true},
		{"no rejects third-party", ThirdPartyNo, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gate.Matches(tt.isThirdParty))
		})
	}
}

func TestFilterMatches(t *testing.T) {
	f := &Filter{
		Kind:            KindBlocking,
		Text:            "||ads.example.com^",
		Pattern:         "||ads.example.com^",
		ContentTypeMask: DefaultContentType,
		ThirdPartyGate:  ThirdPartyAny,
	}

	assert.True(t, f.Matches("http://ads.example.com/x.js", Script, "", false))
	assert.False(t, f.Matches("http://ads.example.com/x.js", Popup, "", false))
}

func TestFilterMatchesRespectsDisabled(t *testing.T) {
	f := &Filter{
		Kind:            KindBlocking,
		Pattern:         "ads.example.com",
		ContentTypeMask: AllTypesMask,
		ThirdPartyGate:  ThirdPartyAny,
	}
	assert.True(t, f.Matches("http://ads.example.com/", Script, "", false))
	f.SetDisabled(true)
	assert.False(t, f.Matches("http://ads.example.com/", Script, "", false))
	assert.True(t, f.Disabled())
}

func TestFilterIsActiveOnDomainWithNoDomainSource(t *testing.T) {
	f := &Filter{Kind: KindBlocking, Pattern: "ads.example.com"}
	assert.True(t, f.IsActiveOnDomain("anything.com"))
}

func TestFilterIsActiveOnDomainWithDomainSource(t *testing.T) {
	f := &Filter{Kind: KindBlocking, Pattern: "ads.example.com"}
	f.SetDomainSource("example.com", '|', true)
	assert.True(t, f.IsActiveOnDomain("example.com"))
	assert.False(t, f.IsActiveOnDomain("other.com"))
}

func TestFilterGetRegexIsCachedAndErrorsSurface(t *testing.T) {
	f := &Filter{Kind: KindBlocking, Pattern: "/(unclosed/"}
	re1, err1 := f.GetRegex()
	re2, err2 := f.GetRegex()
	assert.Nil(t, re1)
	assert.Nil(t, re2)
	assert.Error(t, err1)
	assert.Equal(t, err1, err2)
}

func TestIsActive(t *testing.T) {
	assert.True(t, (&Filter{Kind: KindBlocking}).IsActive())
	assert.True(t, (&Filter{Kind: KindWhitelist}).IsActive())
	assert.True(t, (&Filter{Kind: KindElemHide}).IsActive())
	assert.True(t, (&Filter{Kind: KindElemHideException}).IsActive())
	assert.False(t, (&Filter{Kind: KindComment}).IsActive())
	assert.False(t, (&Filter{Kind: KindInvalid}).IsActive())
}
