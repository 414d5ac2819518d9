package dicomio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Decoder reads DICOM primitive values from an underlying io.Reader. It
// tracks the active transfer syntax and a stack of nested byte-count
// limits (one per sequence/item scope), and accumulates a sticky error
// instead of returning one from every call, matching the rest of the
// codec's error-handling convention (see Error/SetError).
type Decoder struct {
	in  *bufio.Reader
	err error

	bo       binary.ByteOrder
	implicit IsImplicitVR
	oldTransferSyntaxes []transferSyntaxStackEntry

	// limitPos is the absolute stream position (BytesRead value) at which
	// the current scope ends, or -1 when unbounded (top-level stream).
	limitPos  int64
	pos       int64
	oldLimits []int64

	codingSystem CodingSystem

	oddLengthStrategy OddLengthStrategy
	maxValueLength    uint32 // 0 means unbounded
}

// NewDecoder creates a Decoder reading from "in", starting in the given
// transfer syntax.
func NewDecoder(in io.Reader, bo binary.ByteOrder, implicit IsImplicitVR) *Decoder {
	return &Decoder{
		in:       bufio.NewReader(in),
		bo:       bo,
		implicit: implicit,
		limitPos: -1,
	}
}

// NewBytesDecoder creates a Decoder reading from an in-memory byte slice.
func NewBytesDecoder(data []byte, bo binary.ByteOrder, implicit IsImplicitVR) *Decoder {
	d := NewDecoder(bytes.NewReader(data), bo, implicit)
	d.limitPos = int64(len(data))
	return d
}

// SetOddLengthStrategy configures how odd definite value lengths are
// handled; see OddLengthStrategy.
func (d *Decoder) SetOddLengthStrategy(s OddLengthStrategy) { d.oddLengthStrategy = s }

// OddLengthStrategy returns the active odd-length tolerance.
func (d *Decoder) OddLengthStrategy() OddLengthStrategy { return d.oddLengthStrategy }

// SetMaxValueLength bounds the single largest value length this decoder
// will honor; zero means unbounded. Exceeding it sets ErrResourceCapExceeded.
func (d *Decoder) SetMaxValueLength(n uint32) { d.maxValueLength = n }

// CheckValueLength validates a just-read declared length against the
// resource cap, setting the sticky error and returning false if exceeded.
func (d *Decoder) CheckValueLength(vl uint32) bool {
	if d.maxValueLength != 0 && vl != 0xFFFFFFFF && vl > d.maxValueLength {
		d.SetError(fmt.Errorf("%w: %d > %d", ErrResourceCapExceeded, vl, d.maxValueLength))
		return false
	}
	return true
}

// SetError records the first error encountered. Subsequent calls are
// no-ops once an error is set, so a long decode chain can be written
// without checking the error after every step.
func (d *Decoder) SetError(err error) {
	if d.err == nil {
		d.err = err
	}
}

// SetErrorf is a convenience wrapper around SetError(fmt.Errorf(...)).
func (d *Decoder) SetErrorf(format string, args ...interface{}) {
	d.SetError(fmt.Errorf(format, args...))
}

// Error returns the first sticky error, if any.
func (d *Decoder) Error() error { return d.err }

// TransferSyntax returns the active byte order and VR style.
func (d *Decoder) TransferSyntax() (binary.ByteOrder, IsImplicitVR) {
	return d.bo, d.implicit
}

// Underlying returns the Decoder's unread input. Callers that discover a
// codec change partway through a stream (e.g. the dataset body turning
// out to be deflate-compressed once TransferSyntaxUID is known) can wrap
// this in a new reader and build a fresh Decoder over it.
func (d *Decoder) Underlying() io.Reader { return d.in }

// PushTransferSyntax saves the current transfer syntax and switches to a
// new one; pair with PopTransferSyntax.
func (d *Decoder) PushTransferSyntax(bo binary.ByteOrder, implicit IsImplicitVR) {
	d.oldTransferSyntaxes = append(d.oldTransferSyntaxes, transferSyntaxStackEntry{d.bo, d.implicit})
	d.bo = bo
	d.implicit = implicit
}

// PopTransferSyntax restores the transfer syntax active before the most
// recent PushTransferSyntax.
func (d *Decoder) PopTransferSyntax() {
	n := len(d.oldTransferSyntaxes)
	last := d.oldTransferSyntaxes[n-1]
	d.bo, d.implicit = last.bo, last.implicit
	d.oldTransferSyntaxes = d.oldTransferSyntaxes[:n-1]
}

// SetCodingSystem installs the character-set decoders used for string
// values read from this point on (until the decoder is discarded or
// SetCodingSystem is called again).
func (d *Decoder) SetCodingSystem(cs CodingSystem) { d.codingSystem = cs }

// CodingSystem returns the active character-set decoders.
func (d *Decoder) CodingSystem() CodingSystem { return d.codingSystem }

// PushLimit bounds further reads to at most "n" more bytes from the
// current position, saving the previous limit; pair with PopLimit. Used
// to scope a definite-length element, sequence, or item.
func (d *Decoder) PushLimit(n int64) {
	d.oldLimits = append(d.oldLimits, d.limitPos)
	newLimit := d.pos + n
	if d.limitPos >= 0 && newLimit > d.limitPos {
		newLimit = d.limitPos
	}
	d.limitPos = newLimit
}

// PopLimit restores the byte limit active before the most recent
// PushLimit, first skipping any bytes left unconsumed in the popped
// scope.
func (d *Decoder) PopLimit() {
	n := len(d.oldLimits)
	prev := d.oldLimits[n-1]
	d.oldLimits = d.oldLimits[:n-1]
	if d.limitPos >= 0 && d.pos < d.limitPos {
		d.Skip(int(d.limitPos - d.pos))
	}
	d.limitPos = prev
}

// BytesLeftInLimit returns the number of bytes left to read in the
// innermost active PushLimit scope, or -1 if unbounded.
func (d *Decoder) BytesLeftInLimit() int64 {
	if d.limitPos < 0 {
		return -1
	}
	return d.limitPos - d.pos
}

// BytesRead returns the total number of bytes consumed so far.
func (d *Decoder) BytesRead() int64 { return d.pos }

// EOF reports whether the decoder has reached the end of its current
// scope (or, at top level, the underlying stream).
func (d *Decoder) EOF() bool {
	if d.err != nil {
		return true
	}
	if d.limitPos >= 0 {
		return d.pos >= d.limitPos
	}
	_, err := d.in.Peek(1)
	return err != nil
}

func (d *Decoder) readRaw(p []byte) {
	if d.err != nil {
		return
	}
	if d.limitPos >= 0 && d.pos+int64(len(p)) > d.limitPos {
		d.SetError(fmt.Errorf("%w: wanted %d bytes, %d left in scope", ErrInputExhausted, len(p), d.limitPos-d.pos))
		return
	}
	n, err := io.ReadFull(d.in, p)
	d.pos += int64(n)
	if err != nil {
		d.SetError(fmt.Errorf("%w: %v", ErrInputExhausted, err))
	}
}

// Skip discards the next "length" bytes.
func (d *Decoder) Skip(length int) {
	if length <= 0 {
		return
	}
	buf := make([]byte, length)
	d.readRaw(buf)
}

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() byte {
	var b [1]byte
	d.readRaw(b[:])
	return b[0]
}

// ReadUInt16 reads one 16-bit unsigned integer in the active byte order.
func (d *Decoder) ReadUInt16() uint16 {
	var b [2]byte
	d.readRaw(b[:])
	return d.bo.Uint16(b[:])
}

// ReadUInt32 reads one 32-bit unsigned integer in the active byte order.
func (d *Decoder) ReadUInt32() uint32 {
	var b [4]byte
	d.readRaw(b[:])
	return d.bo.Uint32(b[:])
}

// ReadInt16 reads one 16-bit signed integer in the active byte order.
func (d *Decoder) ReadInt16() int16 { return int16(d.ReadUInt16()) }

// ReadInt32 reads one 32-bit signed integer in the active byte order.
func (d *Decoder) ReadInt32() int32 { return int32(d.ReadUInt32()) }

// ReadFloat32 reads one IEEE-754 single-precision float.
func (d *Decoder) ReadFloat32() float32 {
	return math.Float32frombits(d.ReadUInt32())
}

// ReadFloat64 reads one IEEE-754 double-precision float.
func (d *Decoder) ReadFloat64() float64 {
	var b [8]byte
	d.readRaw(b[:])
	return math.Float64frombits(d.bo.Uint64(b[:]))
}

// ReadBytes reads exactly "length" raw bytes.
func (d *Decoder) ReadBytes(length int) []byte {
	buf := make([]byte, length)
	d.readRaw(buf)
	return buf
}

// ReadString reads "length" bytes and returns them as a string, without
// any character-set decoding applied.
func (d *Decoder) ReadString(length uint32) string {
	return string(d.ReadBytes(int(length)))
}

// Finish returns the sticky error, and additionally reports an error if
// the decoder was constructed over a fixed byte slice (NewBytesDecoder)
// and bytes remain unconsumed.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.limitPos >= 0 && d.pos < d.limitPos {
		return fmt.Errorf("dicomio: %d unconsumed bytes remain", d.limitPos-d.pos)
	}
	return nil
}
