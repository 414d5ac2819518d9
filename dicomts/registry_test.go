package dicomts

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvbird-dicom/dicomcore/dicomio"
	"github.com/tvbird-dicom/dicomcore/dicomuid"
)

func TestLookupBuiltinImplicitVRLittleEndian(t *testing.T) {
	ts, err := Lookup(dicomuid.ImplicitVRLittleEndian)
	require.NoError(t, err)
	assert.Equal(t, binary.LittleEndian, ts.ByteOrder)
	assert.Equal(t, dicomio.ImplicitVR, ts.Implicit)
	assert.False(t, ts.Encapsulated)
	assert.False(t, ts.Deflated)
}

func TestLookupBuiltinDeflated(t *testing.T) {
	ts, err := Lookup(dicomuid.DeflatedExplicitVRLittleEndian)
	require.NoError(t, err)
	assert.True(t, ts.Deflated)
	assert.Equal(t, dicomio.ExplicitVR, ts.Implicit)
}

func TestLookupBuiltinEncapsulated(t *testing.T) {
	ts, err := Lookup(dicomuid.JPEGBaseline1)
	require.NoError(t, err)
	assert.True(t, ts.Encapsulated)
}

func TestLookupTrimsTrailingNUL(t *testing.T) {
	ts, err := Lookup(dicomuid.ImplicitVRLittleEndian + "\x00")
	require.NoError(t, err)
	assert.Equal(t, dicomuid.ImplicitVRLittleEndian, ts.UID)
}

func TestLookupUnknownUIDFails(t *testing.T) {
	_, err := Lookup("1.2.3.4.5.6.7.8.9")
	require.Error(t, err)
	assert.ErrorIs(t, err, dicomio.ErrUnsupportedTransferSyntax)
}

func TestSubmitNewTransferSyntaxBeforeFreeze(t *testing.T) {
	Reset()
	defer Reset()

	err := Submit(&TransferSyntax{UID: "1.2.9999.1", Name: "Test TS", ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR})
	require.NoError(t, err)

	ts, err := Lookup("1.2.9999.1")
	require.NoError(t, err)
	assert.Equal(t, "Test TS", ts.Name)
}

func TestSubmitRejectsDuplicateFullRegistration(t *testing.T) {
	Reset()
	defer Reset()

	err := Submit(&TransferSyntax{UID: dicomuid.ExplicitVRLittleEndian, Name: "duplicate"})
	assert.Error(t, err)
}

func TestRegisterStubThenSubmitReplaces(t *testing.T) {
	Reset()
	defer Reset()

	RegisterStub("1.2.9999.2", "Stubbed TS")
	_, err := Lookup("1.2.9999.2")
	assert.Error(t, err, "a stub alone is not a usable registration")

	require.NoError(t, Submit(&TransferSyntax{UID: "1.2.9999.2", Name: "Real TS", ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR}))
	ts, err := Lookup("1.2.9999.2")
	require.NoError(t, err)
	assert.Equal(t, "Real TS", ts.Name)
}

func TestFreezeBlocksBrandNewUIDButAllowsStubReplacement(t *testing.T) {
	Reset()
	defer Reset()

	RegisterStub("1.2.9999.3", "Pending TS")
	Freeze()

	err := Submit(&TransferSyntax{UID: "1.2.9999.3", Name: "Finally Real", ByteOrder: binary.LittleEndian, Implicit: dicomio.ExplicitVR})
	require.NoError(t, err, "replacing a pre-frozen stub must still succeed")

	err = Submit(&TransferSyntax{UID: "1.2.9999.4", Name: "Too Late"})
	assert.Error(t, err, "a brand-new UID after Freeze must be rejected")
}

func TestResetRestoresBuiltinsOnly(t *testing.T) {
	Reset()
	defer Reset()

	require.NoError(t, Submit(&TransferSyntax{UID: "1.2.9999.5", Name: "Transient"}))
	Reset()

	_, err := Lookup("1.2.9999.5")
	assert.Error(t, err)
	_, err = Lookup(dicomuid.ImplicitVRLittleEndian)
	assert.NoError(t, err)
}
