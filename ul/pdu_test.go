package ul

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvbird-dicom/dicomcore/dicomio"
)

func roundTrip(t *testing.T, p PDU, maxlen uint32, strict bool) PDU {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))
	got, err := ReadPDU(&buf, maxlen, strict)
	require.NoError(t, err)
	return got
}

func TestAssociateRQRoundTrip(t *testing.T) {
	rq := &AssociateRQ{
		ProtocolVersion:    1,
		CalledAETitle:      PadAETitle("SCP"),
		CallingAETitle:     PadAETitle("SCU"),
		ApplicationContext: "1.2.840.10008.3.1.1.1",
		PresentationContexts: []PresentationContextRQ{
			{ID: 1, AbstractSyntax: "1.2.840.10008.5.1.4.1.1.2", TransferSyntaxes: []string{"1.2.840.10008.1.2"}},
		},
		UserInfo: UserInformation{
			MaxPDULength:           16384,
			ImplementationClassUID: "1.2.3.4.5",
			ImplementationVersion:  "DICOMCORE_1_0",
		},
	}

	got := roundTrip(t, rq, 0, false).(*AssociateRQ)
	assert.Equal(t, rq.ProtocolVersion, got.ProtocolVersion)
	assert.Equal(t, rq.CalledAETitle, got.CalledAETitle)
	assert.Equal(t, rq.CallingAETitle, got.CallingAETitle)
	assert.Equal(t, rq.ApplicationContext, got.ApplicationContext)
	require.Len(t, got.PresentationContexts, 1)
	assert.Equal(t, rq.PresentationContexts[0], got.PresentationContexts[0])
	assert.Equal(t, rq.UserInfo, got.UserInfo)
	assert.Equal(t, "SCP", TrimAETitle(got.CalledAETitle))
}

func TestAssociateACRoundTrip(t *testing.T) {
	ac := &AssociateAC{
		ProtocolVersion:    1,
		CalledAETitle:      PadAETitle("SCP"),
		CallingAETitle:     PadAETitle("SCU"),
		ApplicationContext: "1.2.840.10008.3.1.1.1",
		PresentationContexts: []PresentationContextAC{
			{ID: 1, Result: ResultAcceptance, TransferSyntax: "1.2.840.10008.1.2"},
		},
		UserInfo: UserInformation{MaxPDULength: 16384},
	}
	got := roundTrip(t, ac, 0, false).(*AssociateAC)
	assert.Equal(t, ac.PresentationContexts, got.PresentationContexts)
	assert.Equal(t, ac.UserInfo.MaxPDULength, got.UserInfo.MaxPDULength)
}

func TestAssociateACRejectedContextOmitsTransferSyntax(t *testing.T) {
	ac := &AssociateAC{
		PresentationContexts: []PresentationContextAC{
			{ID: 1, Result: ResultAbstractSyntaxNotSupported},
		},
	}
	got := roundTrip(t, ac, 0, false).(*AssociateAC)
	require.Len(t, got.PresentationContexts, 1)
	assert.Equal(t, ResultAbstractSyntaxNotSupported, got.PresentationContexts[0].Result)
	assert.Empty(t, got.PresentationContexts[0].TransferSyntax)
}

func TestAssociateRJRoundTrip(t *testing.T) {
	rj := &AssociateRJ{Result: RejectionPermanent, Source: RejectionSourceServiceUser, Reason: 1}
	got := roundTrip(t, rj, 0, false).(*AssociateRJ)
	assert.Equal(t, *rj, *got)
}

func TestDataTFRoundTrip(t *testing.T) {
	dtf := &DataTF{Items: []PresentationDataValue{
		NewPDV(1, true, true, []byte{0xDE, 0xAD, 0xBE, 0xEF}),
	}}
	got := roundTrip(t, dtf, 0, false).(*DataTF)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].IsCommand())
	assert.True(t, got.Items[0].IsLastFragment())
	assert.Equal(t, dtf.Items[0].Data, got.Items[0].Data)
}

func TestReleaseRoundTrip(t *testing.T) {
	_ = roundTrip(t, &ReleaseRQ{}, 0, false).(*ReleaseRQ)
	_ = roundTrip(t, &ReleaseRP{}, 0, false).(*ReleaseRP)
}

func TestAbortRoundTrip(t *testing.T) {
	a := &Abort{Source: AbortSourceServiceProvider, Reason: AbortReasonUnexpectedPDU}
	got := roundTrip(t, a, 0, false).(*Abort)
	assert.Equal(t, *a, *got)
}

func TestReadPDUUnknownType(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHeader(&buf, 0xAA, 0))
	_, err := ReadPDU(&buf, 0, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dicomio.ErrPDU))
}

func TestReadPDUExceedsMaxlen(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHeader(&buf, TypeReleaseRQ, 1000))
	buf.Write(make([]byte, 1000))
	_, err := ReadPDU(&buf, 100, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dicomio.ErrResourceCapExceeded))
}

func TestReadPDUStrictDefaultsMaxlen(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHeader(&buf, TypeReleaseRQ, DefaultMaxPDULength+1))
	_, err := ReadPDU(&buf, 0, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dicomio.ErrResourceCapExceeded))
}

func TestReadPDUTruncatedHeaderNeverPanics(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x01},
		{0x04, 0x00, 0x00, 0x00, 0x00},
		{0x04, 0x00, 0x00, 0x00, 0x00, 0x10},
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_, _ = ReadPDU(bytes.NewReader(in), 0, false)
		})
	}
}

func TestAETitlePadding(t *testing.T) {
	padded := PadAETitle("SCU")
	assert.Equal(t, 16, len(padded))
	assert.Equal(t, byte(' '), padded[15])
	assert.Equal(t, "SCU", TrimAETitle(padded))

	long := PadAETitle("EXACTLY_SIXTEEN!")
	assert.Equal(t, "EXACTLY_SIXTEEN!", TrimAETitle(long))
}

func TestAssociateRQStrictRejectsNonSpaceAETitlePadding(t *testing.T) {
	fixed := make([]byte, 68)
	binary.BigEndian.PutUint16(fixed[0:2], 1)
	copy(fixed[4:20], "SCU") // bytes past "SCU" are left as NUL, not space
	copy(fixed[20:36], "SCU")

	var strictBuf bytes.Buffer
	require.NoError(t, writeHeader(&strictBuf, TypeAssociateRQ, uint32(len(fixed))))
	strictBuf.Write(fixed)
	_, err := ReadPDU(&strictBuf, 0, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dicomio.ErrPDU))

	var lenientBuf bytes.Buffer
	require.NoError(t, writeHeader(&lenientBuf, TypeAssociateRQ, uint32(len(fixed))))
	lenientBuf.Write(fixed)
	_, err = ReadPDU(&lenientBuf, 0, false)
	assert.NoError(t, err)
}

func TestAssociateRQStrictRejectsNonPrintableApplicationContext(t *testing.T) {
	var body bytes.Buffer
	require.NoError(t, encodeAssociateHeader(&body, 1, PadAETitle("SCP"), PadAETitle("SCU")))
	require.NoError(t, encodeItem(&body, ItemApplicationContext, []byte{0x01, 0x02}))

	var strictBuf bytes.Buffer
	require.NoError(t, writeHeader(&strictBuf, TypeAssociateRQ, uint32(body.Len())))
	strictBuf.Write(body.Bytes())
	_, err := ReadPDU(&strictBuf, 0, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dicomio.ErrPDU))

	var lenientBuf bytes.Buffer
	require.NoError(t, writeHeader(&lenientBuf, TypeAssociateRQ, uint32(body.Len())))
	lenientBuf.Write(body.Bytes())
	got, err := ReadPDU(&lenientBuf, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "\x01\x02", got.(*AssociateRQ).ApplicationContext)
}

func TestDataTFStrictRejectsPDVLengthOverrunningPDU(t *testing.T) {
	var pdv bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], 1000) // declares far more than actually follows
	pdv.Write(lenBuf[:])
	pdv.Write([]byte{1, 0x02}) // presentation-context-id, message-control-header
	pdv.Write([]byte{0xDE, 0xAD})

	var strictBuf bytes.Buffer
	require.NoError(t, writeHeader(&strictBuf, TypeDataTF, uint32(pdv.Len())))
	strictBuf.Write(pdv.Bytes())
	_, err := ReadPDU(&strictBuf, 0, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dicomio.ErrPDU))

	var lenientBuf bytes.Buffer
	require.NoError(t, writeHeader(&lenientBuf, TypeDataTF, uint32(pdv.Len())))
	lenientBuf.Write(pdv.Bytes())
	got, err := ReadPDU(&lenientBuf, 0, false)
	require.NoError(t, err)
	dtf := got.(*DataTF)
	require.Len(t, dtf.Items, 1)
	assert.Equal(t, []byte{0xDE, 0xAD}, dtf.Items[0].Data)
}
