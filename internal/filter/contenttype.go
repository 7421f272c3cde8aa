package filter

import "strings"

// ContentType is a bitmask of resource types a network filter applies to.
//
// The C++ original this engine is descended from collided several of these
// constants onto the same bit (XBL/PING/DTD all shared OTHER's bit,
// BACKGROUND shared IMAGE's). That was a transcription bug, not an
// intentional aliasing — every type below gets its own distinct bit.
type ContentType uint32

const (
	Other ContentType = 1 << iota
	Script
	Image
	Stylesheet
	Object
	Subdocument
	Document
	XBL
	Ping
	XMLHTTPRequest
	ObjectSubrequest
	DTD
	Media
	Font
	Background
	Popup
	ElemHide

	numContentTypes = iota
)

// AllTypesMask matches every content type, including Popup and ElemHide.
const AllTypesMask ContentType = (1 << numContentTypes) - 1

// DefaultContentType is what an option list starts from once a negation
// (~TYPE) option is seen without any prior positive type having narrowed it:
// every type except Popup and ElemHide.
const DefaultContentType ContentType = AllTypesMask &^ (Popup | ElemHide)

var typeByOptionName = map[string]ContentType{
	"OTHER":             Other,
	"SCRIPT":            Script,
	"IMAGE":             Image,
	"STYLESHEET":        Stylesheet,
	"OBJECT":            Object,
	"SUBDOCUMENT":       Subdocument,
	"DOCUMENT":          Document,
	"XBL":               XBL,
	"PING":              Ping,
	"XMLHTTPREQUEST":    XMLHTTPRequest,
	"OBJECT_SUBREQUEST": ObjectSubrequest,
	"DTD":               DTD,
	"MEDIA":             Media,
	"FONT":              Font,
	"BACKGROUND":        Background,
	"POPUP":             Popup,
	"ELEMHIDE":          ElemHide,
}

// TypeByOptionName looks up the bit for an uppercased option name such as
// "SCRIPT" or "XMLHTTPREQUEST".
func TypeByOptionName(name string) (ContentType, bool) {
	t, ok := typeByOptionName[name]
	return t, ok
}

// TypeByQueryName maps the content-type string passed to a match query
// (case-insensitive) to its bit.
func TypeByQueryName(name string) (ContentType, bool) {
	return TypeByOptionName(strings.ToUpper(name))
}

// Has reports whether every bit in other is set in ct.
func (ct ContentType) Has(other ContentType) bool {
	return ct&other == other
}
