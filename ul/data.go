package ul

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tvbird-dicom/dicomcore/dicomio"
)

// Message-control-header bits (PS3.8 9.3.5.1).
const (
	messageControlCommand      uint8 = 0x01
	messageControlLastFragment uint8 = 0x02
)

// PresentationDataValue is one PDV item inside a P-DATA-TF PDU: a
// fragment of either the command stream or the dataset stream for one
// presentation context.
type PresentationDataValue struct {
	PresentationContextID uint8
	MessageControlHeader  uint8
	Data                  []byte
}

// IsCommand reports whether this fragment belongs to the command
// stream (as opposed to the dataset stream).
func (pdv *PresentationDataValue) IsCommand() bool {
	return pdv.MessageControlHeader&messageControlCommand != 0
}

// IsLastFragment reports whether this is the final fragment of its
// stream.
func (pdv *PresentationDataValue) IsLastFragment() bool {
	return pdv.MessageControlHeader&messageControlLastFragment != 0
}

// NewPDV builds a PresentationDataValue with the message-control-header
// bits set from isCommand/isLast.
func NewPDV(contextID uint8, isCommand, isLast bool, data []byte) PresentationDataValue {
	var ctrl uint8
	if isCommand {
		ctrl |= messageControlCommand
	}
	if isLast {
		ctrl |= messageControlLastFragment
	}
	return PresentationDataValue{PresentationContextID: contextID, MessageControlHeader: ctrl, Data: data}
}

// DataTF is a P-DATA-TF PDU (PS3.8 9.3.5): one or more PDV items.
type DataTF struct {
	Items []PresentationDataValue
}

func (p *DataTF) Type() byte { return TypeDataTF }

func (p *DataTF) Encode(w io.Writer) error {
	var buf bytes.Buffer
	for _, item := range p.Items {
		if err := encodePDV(&buf, item); err != nil {
			return err
		}
	}
	if err := writeHeader(w, TypeDataTF, uint32(buf.Len())); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (p *DataTF) decode(r io.Reader, strict bool) error {
	for {
		item, err := decodePDV(r, strict)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		p.Items = append(p.Items, item)
	}
}

func encodePDV(w io.Writer, pdv PresentationDataValue) error {
	itemLength := uint32(2 + len(pdv.Data))
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], itemLength)
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{pdv.PresentationContextID, pdv.MessageControlHeader}); err != nil {
		return err
	}
	_, err := w.Write(pdv.Data)
	return err
}

// decodePDV reads one PDV item. In strict mode, a declared length that
// overruns the bytes actually remaining in the outer P-DATA-TF PDU is a
// hard error; in non-strict mode the PDV's data is truncated to what's
// actually available instead of failing.
func decodePDV(r io.Reader, strict bool) (PresentationDataValue, error) {
	var pdv PresentationDataValue
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return pdv, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length < 2 {
		return pdv, fmt.Errorf("%w: PDV item length %d too short", dicomio.ErrPDU, length)
	}
	var ctrl [2]byte
	if _, err := io.ReadFull(r, ctrl[:]); err != nil {
		return pdv, err
	}
	pdv.PresentationContextID, pdv.MessageControlHeader = ctrl[0], ctrl[1]
	pdv.Data = make([]byte, length-2)
	n, err := io.ReadFull(r, pdv.Data)
	if err != nil {
		if !strict && (err == io.ErrUnexpectedEOF || err == io.EOF) {
			pdv.Data = pdv.Data[:n]
			return pdv, nil
		}
		return pdv, fmt.Errorf("%w: PDV declares length %d: %v", dicomio.ErrPDU, length, err)
	}
	return pdv, nil
}
