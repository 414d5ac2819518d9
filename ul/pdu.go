// Package ul implements the DICOM Upper Layer PDU codec: the
// association-control PDUs (A-ASSOCIATE-RQ/AC/RJ, A-RELEASE-RQ/RP,
// A-ABORT, P-DATA-TF) exchanged over a TCP association, and the
// reassembly of fragmented P-DATA-TF payloads into complete command and
// dataset streams.
package ul

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/tvbird-dicom/dicomcore/dicomio"
)

// PDU type codes (PS3.8 9.3).
const (
	TypeAssociateRQ byte = 0x01
	TypeAssociateAC byte = 0x02
	TypeAssociateRJ byte = 0x03
	TypeDataTF      byte = 0x04
	TypeReleaseRQ   byte = 0x05
	TypeReleaseRP   byte = 0x06
	TypeAbort       byte = 0x07
)

// Variable-item type codes nested inside A-ASSOCIATE-RQ/AC bodies.
const (
	ItemApplicationContext     byte = 0x10
	ItemPresentationContextRQ  byte = 0x20
	ItemPresentationContextAC  byte = 0x21
	ItemAbstractSyntax         byte = 0x30
	ItemTransferSyntax         byte = 0x40
	ItemUserInformation        byte = 0x50
	ItemMaxLength              byte = 0x51
	ItemImplementationClassUID byte = 0x52
	ItemAsyncOpsWindow         byte = 0x53
	ItemRoleSelection          byte = 0x54
	ItemImplementationVersion  byte = 0x55
	ItemExtendedNegotiation    byte = 0x56
)

// DefaultMaxPDULength is the maximum PDU body length ReadPDU enforces
// in strict mode when the caller passes maxlen 0 (non-strict mode treats
// 0 as unbounded): 16 MiB, per spec.md's codec
// budget (not to be confused with the association's negotiated
// max-PDU-length, carried in ItemMaxLength).
const DefaultMaxPDULength = 16 * 1024 * 1024

// PDU is the tagged variant over the seven Upper Layer PDU types.
type PDU interface {
	Type() byte
	Encode(w io.Writer) error
	decode(r io.Reader, strict bool) error
}

// ReadPDU reads one PDU's 6-byte header and body from r and decodes it.
// maxlen bounds the declared body length (0 means unbounded, only
// honored when strict is false); exceeding it returns an error wrapping
// dicomio.ErrResourceCapExceeded. strict enforces the stricter framing
// rules documented on each PDU's decode method.
func ReadPDU(r io.Reader, maxlen uint32, strict bool) (PDU, error) {
	var hdr [6]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("ul: read PDU header: %w", err)
	}
	pduType := hdr[0]
	length := binary.BigEndian.Uint32(hdr[2:6])

	effectiveMax := maxlen
	if effectiveMax == 0 {
		if strict {
			effectiveMax = DefaultMaxPDULength
		}
	}
	if effectiveMax != 0 && length > effectiveMax {
		return nil, fmt.Errorf("%w: PDU length %d exceeds %d", dicomio.ErrResourceCapExceeded, length, effectiveMax)
	}

	var pdu PDU
	switch pduType {
	case TypeAssociateRQ:
		pdu = &AssociateRQ{}
	case TypeAssociateAC:
		pdu = &AssociateAC{}
	case TypeAssociateRJ:
		pdu = &AssociateRJ{}
	case TypeDataTF:
		pdu = &DataTF{}
	case TypeReleaseRQ:
		pdu = &ReleaseRQ{}
	case TypeReleaseRP:
		pdu = &ReleaseRP{}
	case TypeAbort:
		pdu = &Abort{}
	default:
		return nil, fmt.Errorf("%w: unknown PDU type 0x%02x", dicomio.ErrPDU, pduType)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("ul: read PDU body: %w", err)
	}
	if err := pdu.decode(bytes.NewReader(body), strict); err != nil {
		return nil, fmt.Errorf("ul: decode %T: %w", pdu, err)
	}
	return pdu, nil
}

func writeHeader(w io.Writer, pduType byte, length uint32) error {
	var hdr [6]byte
	hdr[0] = pduType
	binary.BigEndian.PutUint32(hdr[2:6], length)
	_, err := w.Write(hdr[:])
	return err
}

func encodeItem(w io.Writer, itemType byte, data []byte) error {
	var hdr [4]byte
	hdr[0] = itemType
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// readItem reads one variable item's 4-byte header and its declared
// payload. In strict mode, a declared length that overruns the bytes
// actually available in r (exceeding the outer PDU's length budget) is a
// hard error; in non-strict mode the same overrun is tolerated and the
// item is returned with whatever bytes could actually be read.
func readItem(r io.Reader, strict bool) (itemType byte, data []byte, err error) {
	var hdr [4]byte
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	itemType = hdr[0]
	length := binary.BigEndian.Uint16(hdr[2:4])
	data = make([]byte, length)
	n, readErr := io.ReadFull(r, data)
	if readErr != nil {
		if !strict && (readErr == io.ErrUnexpectedEOF || readErr == io.EOF) {
			return itemType, data[:n], nil
		}
		return itemType, nil, fmt.Errorf("%w: item 0x%02x declares length %d: %v", dicomio.ErrPDU, itemType, length, readErr)
	}
	return itemType, data, nil
}

// PadAETitle pads an AE title to the fixed 16-byte field width with
// trailing spaces (PS3.8 9.3.2), truncating a title already 16 bytes or
// longer.
func PadAETitle(title string) [16]byte {
	var out [16]byte
	n := copy(out[:], title)
	for i := n; i < 16; i++ {
		out[i] = ' '
	}
	return out
}

// TrimAETitle strips the trailing space padding PadAETitle adds.
func TrimAETitle(title [16]byte) string {
	s := string(title[:])
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

// validateAETitleStrict enforces PS3.8 9.3.2's AE-title field rules when
// strict is set: every byte must be printable ASCII, and once the title's
// content ends the remaining bytes up to the fixed 16-byte width must be
// exactly space (0x20) padding, not NUL or any other filler.
func validateAETitleStrict(field string, title [16]byte, strict bool) error {
	if !strict {
		return nil
	}
	padding := false
	for i, b := range title {
		switch {
		case padding:
			if b != ' ' {
				return fmt.Errorf("%w: %s AE title has non-space byte 0x%02x after padding starts at offset %d", dicomio.ErrPDU, field, b, i)
			}
		case b == ' ':
			padding = true
		case b < 0x20 || b > 0x7e:
			return fmt.Errorf("%w: %s AE title contains non-printable byte 0x%02x", dicomio.ErrPDU, field, b)
		}
	}
	return nil
}

// validateUID enforces PS3.8's printable-ASCII requirement for UI-valued
// strings (application context name, abstract/transfer syntax UIDs,
// implementation class UID) when strict is set. A single trailing NUL pad
// byte, commonly used to force an even item length, is tolerated.
func validateUID(field, uid string, strict bool) error {
	if !strict {
		return nil
	}
	trimmed := strings.TrimSuffix(uid, "\x00")
	for i := 0; i < len(trimmed); i++ {
		b := trimmed[i]
		if b < 0x20 || b > 0x7e {
			return fmt.Errorf("%w: %s %q contains non-printable byte 0x%02x", dicomio.ErrPDU, field, uid, b)
		}
	}
	return nil
}
