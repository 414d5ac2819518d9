package dicomio

import "errors"

// Sentinel error kinds. Decoders and Encoders wrap these with context via
// fmt.Errorf("...: %w", ...); callers use errors.Is to classify a failure.
var (
	// ErrInputExhausted is returned when the underlying reader ends before
	// a declared length has been fully consumed.
	ErrInputExhausted = errors.New("dicomio: input exhausted before declared length")

	// ErrMalformedHeader is returned when an element or PDU header cannot
	// be parsed (e.g. an unrecognized VR code, an invalid length field).
	ErrMalformedHeader = errors.New("dicomio: malformed header")

	// ErrMalformedValue is returned when a value's bytes cannot be decoded
	// per its VR (e.g. a non-numeric IS/DS string).
	ErrMalformedValue = errors.New("dicomio: malformed value")

	// ErrOddLength is returned when a definite value length is odd and the
	// active OddLengthStrategy is Fail.
	ErrOddLength = errors.New("dicomio: odd value length")

	// ErrUnexpectedToken is returned by the Object Builder when a token
	// stream produces a token that cannot be folded into the current scope
	// (e.g. an ItemEnd outside of any Item scope).
	ErrUnexpectedToken = errors.New("dicomio: unexpected token")

	// ErrUnsupportedTransferSyntax is returned when a transfer syntax UID
	// cannot be resolved to a registered, usable TransferSyntax.
	ErrUnsupportedTransferSyntax = errors.New("dicomio: unsupported transfer syntax")

	// ErrPreambleMissing is returned when the "DICM" magic does not follow
	// the 128-byte preamble. Part-10 reading always expects the preamble.
	ErrPreambleMissing = errors.New("dicomio: missing DICM preamble")

	// ErrResourceCapExceeded is returned when a declared length exceeds a
	// configured resource limit (Decoder.SetMaxValueLength, or ReadPDU's
	// maxlen).
	ErrResourceCapExceeded = errors.New("dicomio: declared length exceeds resource cap")

	// ErrPDU is returned when an Upper Layer PDU cannot be decoded: an
	// unrecognized PDU type, a malformed fixed header, or a variable item
	// that violates its PDU's framing rules.
	ErrPDU = errors.New("dicomio: malformed PDU")

	// ErrAdapter is returned when a transfer syntax's body adapter (e.g.
	// the deflate codec) fails to wrap or process the underlying stream.
	ErrAdapter = errors.New("dicomio: transfer syntax adapter failure")
)
