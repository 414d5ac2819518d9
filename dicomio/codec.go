// Package dicomio implements the Primitive Codec: byte-order- and
// VR-style-aware reading and writing of the scalar wire types DICOM
// elements are built from, plus the supporting character-set decoding
// table.
package dicomio

import (
	"encoding/binary"
)

// IsImplicitVR distinguishes Implicit VR encoding (the VR is inferred from
// the data dictionary) from Explicit VR encoding (the VR is carried on the
// wire). UnknownVR is used before a transfer syntax has been established.
type IsImplicitVR int

const (
	UnknownVR IsImplicitVR = iota
	ImplicitVR
	ExplicitVR
)

// NativeByteOrder is little endian, the byte order the Part-10 reader
// uses for the preamble and the file-meta group.
var NativeByteOrder = binary.LittleEndian

// OddLengthStrategy selects how the codec reacts to a definite element
// value length that is odd, which PS3.5 7.1.1 disallows.
type OddLengthStrategy int

const (
	// OddLengthFail treats an odd length as a hard parse error.
	OddLengthFail OddLengthStrategy = iota
	// OddLengthAccept reads exactly the declared odd number of bytes.
	OddLengthAccept
	// OddLengthRoundUp reads one extra padding byte beyond the declared
	// length, as if the length had been declared even.
	OddLengthRoundUp
)

// transferSyntaxStackEntry is one saved (byte order, VR style) pair, used
// to restore the outer transfer syntax when a nested scope
// (e.g. a sequence item under a different coding) pops.
type transferSyntaxStackEntry struct {
	bo       binary.ByteOrder
	implicit IsImplicitVR
}
