package dicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenKindString(t *testing.T) {
	cases := map[TokenKind]string{
		TokenElementHeader:  "ElementHeader",
		TokenPrimitiveValue: "PrimitiveValue",
		TokenSequenceStart:  "SequenceStart",
		TokenSequenceEnd:    "SequenceEnd",
		TokenItemStart:      "ItemStart",
		TokenItemEnd:        "ItemEnd",
		TokenKind(99):       "Unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}
