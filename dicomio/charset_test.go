package dicomio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecificCharacterSetEmptyIsASCII(t *testing.T) {
	cs, err := ParseSpecificCharacterSet(nil, false)
	require.NoError(t, err)
	assert.Nil(t, cs.Alphabetic)
	assert.Nil(t, cs.Ideographic)
	assert.Nil(t, cs.Phonetic)
}

func TestParseSpecificCharacterSetSingleName(t *testing.T) {
	cs, err := ParseSpecificCharacterSet([]string{"ISO_IR 100"}, false)
	require.NoError(t, err)
	require.NotNil(t, cs.Alphabetic)
	assert.Same(t, cs.Alphabetic, cs.Ideographic)
	assert.Same(t, cs.Alphabetic, cs.Phonetic)

	out, err := cs.Alphabetic.Bytes([]byte{0xE9}) // e-acute in latin-1
	require.NoError(t, err)
	assert.Equal(t, "é", string(out))
}

func TestParseSpecificCharacterSetTwoNames(t *testing.T) {
	cs, err := ParseSpecificCharacterSet([]string{"", "ISO 2022 IR 87"}, false)
	require.NoError(t, err)
	assert.Nil(t, cs.Alphabetic)
	require.NotNil(t, cs.Ideographic)
	assert.Same(t, cs.Ideographic, cs.Phonetic)
}

func TestParseSpecificCharacterSetUnknownFallsBackToUTF8(t *testing.T) {
	cs, err := ParseSpecificCharacterSet([]string{"NOT_A_REAL_CHARSET"}, false)
	require.NoError(t, err)
	require.NotNil(t, cs.Alphabetic)

	out, err := cs.Alphabetic.Bytes([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestParseSpecificCharacterSetCP1250Fix(t *testing.T) {
	plain, err := ParseSpecificCharacterSet([]string{"ISO_IR 100"}, false)
	require.NoError(t, err)
	fixed, err := ParseSpecificCharacterSet([]string{"ISO_IR 100"}, true)
	require.NoError(t, err)

	// Without the fix ISO_IR 100 decodes through htmlindex's "iso-8859-1",
	// which is windows-1252; the fix swaps in windows-1250. Byte 0xA5 is
	// "¥" under windows-1252 and "Ą" under windows-1250.
	plainOut, err := plain.Alphabetic.Bytes([]byte{0xA5})
	require.NoError(t, err)
	fixedOut, err := fixed.Alphabetic.Bytes([]byte{0xA5})
	require.NoError(t, err)
	assert.NotEqual(t, string(plainOut), string(fixedOut))
}
