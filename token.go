package dicom

import "github.com/tvbird-dicom/dicomcore/dicomtag"

// TokenKind enumerates the events a Reader yields from its token stream.
type TokenKind int

const (
	// TokenElementHeader announces a tag, VR, and declared length, before
	// its value (TokenPrimitiveValue) or nested scope
	// (TokenSequenceStart/TokenItemStart) follows.
	TokenElementHeader TokenKind = iota
	// TokenPrimitiveValue carries the decoded value(s) of the element
	// whose header was most recently announced.
	TokenPrimitiveValue
	// TokenSequenceStart opens a VR=SQ element's scope, or an
	// encapsulated PixelData element's fragment scope.
	TokenSequenceStart
	// TokenSequenceEnd closes the scope most recently opened by a
	// TokenSequenceStart.
	TokenSequenceEnd
	// TokenItemStart opens an Item element's scope.
	TokenItemStart
	// TokenItemEnd closes the scope most recently opened by a
	// TokenItemStart.
	TokenItemEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokenElementHeader:
		return "ElementHeader"
	case TokenPrimitiveValue:
		return "PrimitiveValue"
	case TokenSequenceStart:
		return "SequenceStart"
	case TokenSequenceEnd:
		return "SequenceEnd"
	case TokenItemStart:
		return "ItemStart"
	case TokenItemEnd:
		return "ItemEnd"
	default:
		return "Unknown"
	}
}

// Token is one event of a Reader's lazy, pull-based stream over an
// element sequence. Next() yields exactly one Token per call; nothing
// beyond the current element's header or value is ever held in memory by
// the Reader itself.
type Token struct {
	Kind TokenKind

	// Tag is set on every token: the element (or Item/delimiter) the
	// token concerns.
	Tag dicomtag.Tag

	// VR, UndefinedLength, and ValueLength are set on TokenElementHeader.
	VR              string
	UndefinedLength bool
	ValueLength     uint32

	// Values is set on TokenPrimitiveValue; its element type depends on
	// dicomtag.GetVRKind(Tag, VR), matching Element.Value's convention.
	Values []interface{}
}
