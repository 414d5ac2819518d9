package dicomio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderWritePrimitivesRoundTrip(t *testing.T) {
	e := NewBytesEncoder(binary.LittleEndian, ExplicitVR)
	e.WriteByte(0x01)
	e.WriteUInt16(0x1234)
	e.WriteUInt32(0x12345678)
	e.WriteInt16(-1)
	e.WriteInt32(-1)
	e.WriteBytes([]byte{0xAA, 0xBB})
	e.WriteString("AB")
	e.WriteZeros(2)
	require.NoError(t, e.Error())

	d := NewBytesDecoder(e.Bytes(), binary.LittleEndian, ExplicitVR)
	assert.Equal(t, byte(0x01), d.ReadByte())
	assert.Equal(t, uint16(0x1234), d.ReadUInt16())
	assert.Equal(t, uint32(0x12345678), d.ReadUInt32())
	assert.Equal(t, int16(-1), d.ReadInt16())
	assert.Equal(t, int32(-1), d.ReadInt32())
	assert.Equal(t, []byte{0xAA, 0xBB}, d.ReadBytes(2))
	assert.Equal(t, "AB", d.ReadString(2))
	assert.Equal(t, []byte{0, 0}, d.ReadBytes(2))
	require.NoError(t, d.Finish())
}

func TestEncoderTransferSyntaxPushPop(t *testing.T) {
	e := NewBytesEncoder(binary.LittleEndian, ExplicitVR)
	e.PushTransferSyntax(binary.BigEndian, ImplicitVR)
	bo, implicit := e.TransferSyntax()
	assert.Equal(t, binary.BigEndian, bo)
	assert.Equal(t, ImplicitVR, implicit)

	e.PopTransferSyntax()
	bo, implicit = e.TransferSyntax()
	assert.Equal(t, binary.LittleEndian, bo)
	assert.Equal(t, ExplicitVR, implicit)
}

func TestEncoderStickyErrorStopsFurtherWrites(t *testing.T) {
	e := NewBytesEncoder(binary.LittleEndian, ExplicitVR)
	e.SetError(assert.AnError)
	e.WriteByte(0xFF)
	assert.Empty(t, e.Bytes())
	assert.Equal(t, assert.AnError, e.Error())
}

func TestEncoderSetErrorKeepsFirst(t *testing.T) {
	e := NewBytesEncoder(binary.LittleEndian, ExplicitVR)
	e.SetErrorf("first: %d", 1)
	e.SetErrorf("second: %d", 2)
	assert.Equal(t, "first: 1", e.Error().Error())
}

func TestEncoderFloatsRoundTrip(t *testing.T) {
	e := NewBytesEncoder(binary.BigEndian, ExplicitVR)
	e.WriteFloat32(1.5)
	e.WriteFloat64(-2.5)
	require.NoError(t, e.Error())

	d := NewBytesDecoder(e.Bytes(), binary.BigEndian, ExplicitVR)
	assert.Equal(t, float32(1.5), d.ReadFloat32())
	assert.Equal(t, -2.5, d.ReadFloat64())
}
