package ul

import "io"

// Abort sources (PS3.8 Table 9-26).
const (
	AbortSourceServiceUser     uint8 = 0
	AbortSourceServiceProvider uint8 = 2
)

// Abort reasons, meaningful only when Source is
// AbortSourceServiceProvider (PS3.8 Table 9-26).
const (
	AbortReasonNotSpecified           uint8 = 0
	AbortReasonUnrecognizedPDU        uint8 = 1
	AbortReasonUnexpectedPDU          uint8 = 2
	AbortReasonUnexpectedPDUParameter uint8 = 4
	AbortReasonInvalidPDUParameter    uint8 = 5
)

// Abort is an A-ABORT PDU (PS3.8 9.3.8).
type Abort struct {
	Source uint8
	Reason uint8
}

func (p *Abort) Type() byte { return TypeAbort }

func (p *Abort) Encode(w io.Writer) error {
	if err := writeHeader(w, TypeAbort, 4); err != nil {
		return err
	}
	_, err := w.Write([]byte{0, 0, p.Source, p.Reason})
	return err
}

func (p *Abort) decode(r io.Reader, strict bool) error {
	var body [4]byte
	if _, err := io.ReadFull(r, body[:]); err != nil {
		return err
	}
	p.Source, p.Reason = body[2], body[3]
	return nil
}
