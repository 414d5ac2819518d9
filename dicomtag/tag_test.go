package dicomtag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagString(t *testing.T) {
	assert.Equal(t, "(0008,0018)", Tag{0x0008, 0x0018}.String())
}

func TestTagLess(t *testing.T) {
	assert.True(t, Tag{0x0008, 0x0000}.Less(Tag{0x0008, 0x0001}))
	assert.True(t, Tag{0x0007, 0xFFFF}.Less(Tag{0x0008, 0x0000}))
	assert.False(t, Tag{0x0008, 0x0001}.Less(Tag{0x0008, 0x0001}))
}

func TestTagIsPrivate(t *testing.T) {
	assert.True(t, Tag{0x0009, 0x0010}.IsPrivate())
	assert.False(t, Tag{0x0008, 0x0010}.IsPrivate())
}

func TestTagIsDelimiter(t *testing.T) {
	assert.True(t, TagItem.IsDelimiter())
	assert.True(t, TagSequenceDelimitationItem.IsDelimiter())
	assert.False(t, TagPatientName.IsDelimiter())
}

func TestFindTagGenericGroupLength(t *testing.T) {
	info, err := FindTag(Tag{0x0009, 0x0000})
	require.NoError(t, err)
	assert.Equal(t, "UL", info.VR)
	assert.Equal(t, "GenericGroupLength", info.Name)
}

func TestFindTagUnknown(t *testing.T) {
	_, err := FindTag(Tag{0x0009, 0x1234})
	assert.Error(t, err)
}

func TestFindTagByName(t *testing.T) {
	info, err := FindTagByName("TransferSyntaxUID")
	require.NoError(t, err)
	assert.Equal(t, TagTransferSyntaxUID, info.Tag)

	_, err = FindTagByName("NotARealTagName")
	assert.Error(t, err)
}

func TestGetVRKindSpecialCases(t *testing.T) {
	assert.Equal(t, VRItem, GetVRKind(TagItem, "NA"))
	assert.Equal(t, VRPixelData, GetVRKind(TagPixelData, "OW"))
	assert.Equal(t, VRSequence, GetVRKind(Tag{0x0008, 0x1140}, "SQ"))
	assert.Equal(t, VRBytes, GetVRKind(Tag{0x0008, 0x0000}, "OB"))
	assert.Equal(t, VRString, GetVRKind(Tag{0x0008, 0x0000}, "LO"))
}

func TestParseTag(t *testing.T) {
	tag, err := ParseTag("(0008,0018)")
	require.NoError(t, err)
	assert.Equal(t, Tag{0x0008, 0x0018}, tag)

	tag, err = ParseTag("0010,0010")
	require.NoError(t, err)
	assert.Equal(t, TagPatientName, tag)

	_, err = ParseTag("not-a-tag")
	assert.Error(t, err)
}

func TestStringAnnotatesKnownTag(t *testing.T) {
	assert.Contains(t, String(TagPatientName), "PatientName")
	assert.Contains(t, String(Tag{0x0009, 0x1234}), "??")
}
