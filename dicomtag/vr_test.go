package dicomtag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLongValueLengthVRsIncludesOV(t *testing.T) {
	assert.True(t, LongValueLengthVRs[VR_OV])
	assert.False(t, ForbidsUndefinedLength[VR_OV])
}

func TestGetVRKindOVIsBytes(t *testing.T) {
	assert.Equal(t, VRBytes, GetVRKind(Tag{0x0008, 0x0000}, "OV"))
}

func TestPadByteOVPadsWithNUL(t *testing.T) {
	assert.Equal(t, byte(0x00), PadByte(VR_OV))
}
