package dicomio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encoder writes DICOM primitive values to an underlying io.Writer,
// tracking the active transfer syntax the same way Decoder does, and
// accumulating a sticky error.
type Encoder struct {
	out io.Writer
	err error

	bo                  binary.ByteOrder
	implicit            IsImplicitVR
	oldTransferSyntaxes []transferSyntaxStackEntry
}

// NewEncoder creates an Encoder writing to "out" in the given transfer
// syntax. Pass a nil byte order (as the file-header encoder does before
// the dataset's transfer syntax is known) to get UnknownVR/nil, which must
// be corrected with PushTransferSyntax before any value is written.
func NewEncoder(out io.Writer, bo binary.ByteOrder, implicit IsImplicitVR) *Encoder {
	return &Encoder{out: out, bo: bo, implicit: implicit}
}

// NewBytesEncoder creates an Encoder that buffers its output in memory;
// retrieve the result with Bytes().
func NewBytesEncoder(bo binary.ByteOrder, implicit IsImplicitVR) *Encoder {
	return NewEncoder(&bytes.Buffer{}, bo, implicit)
}

// Bytes returns the buffered output of an Encoder created via
// NewBytesEncoder. Panics if "out" isn't a *bytes.Buffer.
func (e *Encoder) Bytes() []byte {
	return e.out.(*bytes.Buffer).Bytes()
}

// SetError records the first error encountered.
func (e *Encoder) SetError(err error) {
	if e.err == nil {
		e.err = err
	}
}

// SetErrorf is a convenience wrapper around SetError(fmt.Errorf(...)).
func (e *Encoder) SetErrorf(format string, args ...interface{}) {
	e.SetError(fmt.Errorf(format, args...))
}

// Error returns the first sticky error, if any.
func (e *Encoder) Error() error { return e.err }

// TransferSyntax returns the active byte order and VR style.
func (e *Encoder) TransferSyntax() (binary.ByteOrder, IsImplicitVR) {
	return e.bo, e.implicit
}

// PushTransferSyntax saves the current transfer syntax and switches to a
// new one; pair with PopTransferSyntax.
func (e *Encoder) PushTransferSyntax(bo binary.ByteOrder, implicit IsImplicitVR) {
	e.oldTransferSyntaxes = append(e.oldTransferSyntaxes, transferSyntaxStackEntry{e.bo, e.implicit})
	e.bo = bo
	e.implicit = implicit
}

// PopTransferSyntax restores the transfer syntax active before the most
// recent PushTransferSyntax.
func (e *Encoder) PopTransferSyntax() {
	n := len(e.oldTransferSyntaxes)
	last := e.oldTransferSyntaxes[n-1]
	e.bo, e.implicit = last.bo, last.implicit
	e.oldTransferSyntaxes = e.oldTransferSyntaxes[:n-1]
}

func (e *Encoder) writeRaw(p []byte) {
	if e.err != nil {
		return
	}
	if _, err := e.out.Write(p); err != nil {
		e.SetError(err)
	}
}

// WriteByte writes a single byte.
func (e *Encoder) WriteByte(v byte) { e.writeRaw([]byte{v}) }

// WriteZeros writes "n" zero bytes.
func (e *Encoder) WriteZeros(n int) { e.writeRaw(make([]byte, n)) }

// WriteUInt16 writes one 16-bit unsigned integer in the active byte order.
func (e *Encoder) WriteUInt16(v uint16) {
	var b [2]byte
	e.bo.PutUint16(b[:], v)
	e.writeRaw(b[:])
}

// WriteUInt32 writes one 32-bit unsigned integer in the active byte order.
func (e *Encoder) WriteUInt32(v uint32) {
	var b [4]byte
	e.bo.PutUint32(b[:], v)
	e.writeRaw(b[:])
}

// WriteInt16 writes one 16-bit signed integer in the active byte order.
func (e *Encoder) WriteInt16(v int16) { e.WriteUInt16(uint16(v)) }

// WriteInt32 writes one 32-bit signed integer in the active byte order.
func (e *Encoder) WriteInt32(v int32) { e.WriteUInt32(uint32(v)) }

// WriteFloat32 writes one IEEE-754 single-precision float.
func (e *Encoder) WriteFloat32(v float32) { e.WriteUInt32(math.Float32bits(v)) }

// WriteFloat64 writes one IEEE-754 double-precision float.
func (e *Encoder) WriteFloat64(v float64) {
	var b [8]byte
	e.bo.PutUint64(b[:], math.Float64bits(v))
	e.writeRaw(b[:])
}

// WriteBytes writes raw bytes as-is.
func (e *Encoder) WriteBytes(v []byte) { e.writeRaw(v) }

// WriteString writes a string as raw bytes, with no padding or
// character-set re-encoding.
func (e *Encoder) WriteString(v string) { e.writeRaw([]byte(v)) }
