package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	frames := [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8, 9, 10}}
	seq, err := EncodeFragments(frames, 4)
	require.NoError(t, err)

	wire := seq.Encode()
	got, err := ParseFragments(wire)
	require.NoError(t, err)

	assert.Equal(t, seq.Offsets, got.Offsets)
	require.Equal(t, len(seq.Fragments), len(got.Fragments))
	for i := range seq.Fragments {
		assert.Equal(t, seq.Fragments[i].Data, got.Fragments[i].Data)
	}

	require.Equal(t, 2, got.NumFrames())
	f0, err := got.Frame(0)
	require.NoError(t, err)
	assert.Equal(t, frames[0], f0)

	f1, err := got.Frame(1)
	require.NoError(t, err)
	// frame 1 is 6 bytes split into two 4-byte fragments, the second
	// zero-padded to fragmentSize.
	assert.Equal(t, []byte{5, 6, 7, 8, 9, 10, 0, 0}, f1)
}

func TestParseFragmentsNoOffsetTable(t *testing.T) {
	seq := &Sequence{Fragments: []Fragment{{Data: []byte{1, 2}}, {Data: []byte{3, 4}}}}
	wire := seq.Encode()
	got, err := ParseFragments(wire)
	require.NoError(t, err)
	assert.Empty(t, got.Offsets)
	assert.Equal(t, 2, got.NumFrames())

	f0, err := got.Frame(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, f0)
}

func TestParseFragmentsMissingDelimiterFails(t *testing.T) {
	// A single well-formed item (empty BOT) with no delimiter following.
	data := []byte{0xFE, 0xFF, 0x00, 0xE0, 0x00, 0x00, 0x00, 0x00}
	_, err := ParseFragments(data)
	assert.Error(t, err)
}

func TestParseFragmentsTruncatedHeaderFails(t *testing.T) {
	_, err := ParseFragments([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestParseFragmentsBadOffsetTableLengthFails(t *testing.T) {
	// Item header claiming a 3-byte BOT payload (not a multiple of 4).
	data := []byte{0xFE, 0xFF, 0x00, 0xE0, 0x03, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03}
	_, err := ParseFragments(data)
	assert.Error(t, err)
}

func TestFrameOutOfRangeFails(t *testing.T) {
	seq, err := EncodeFragments([][]byte{{1, 2}}, 2)
	require.NoError(t, err)
	_, err = seq.Frame(5)
	assert.Error(t, err)
}

func TestFromItemsBuildsSequence(t *testing.T) {
	seq, err := FromItems([][]byte{nil, {1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Empty(t, seq.Offsets)
	require.Len(t, seq.Fragments, 2)
	assert.Equal(t, []byte{1, 2}, seq.Fragments[0].Data)
}

func TestFromItemsWithOffsetTable(t *testing.T) {
	bot := make([]byte, 8)
	bot[4] = 0x10 // offsets[1] = 0x10
	seq, err := FromItems([][]byte{bot, {1, 2}, {3, 4}})
	require.NoError(t, err)
	require.Len(t, seq.Offsets, 2)
	assert.Equal(t, uint32(0), seq.Offsets[0])
	assert.Equal(t, uint32(0x10), seq.Offsets[1])
}

func TestFromItemsEmpty(t *testing.T) {
	seq, err := FromItems(nil)
	require.NoError(t, err)
	assert.Empty(t, seq.Offsets)
	assert.Empty(t, seq.Fragments)
}

func TestEncodeFragmentsRejectsOddFragmentSize(t *testing.T) {
	_, err := EncodeFragments([][]byte{{1}}, 3)
	assert.Error(t, err)
}

func TestEncodeFragmentsEmptyFrame(t *testing.T) {
	seq, err := EncodeFragments([][]byte{{}}, 2)
	require.NoError(t, err)
	require.Len(t, seq.Fragments, 1)
	assert.Empty(t, seq.Fragments[0].Data)
}
