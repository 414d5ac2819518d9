package ul

import "io"

// ReleaseRQ is an A-RELEASE-RQ PDU (PS3.8 9.3.6): a 4-byte reserved
// field, no semantic content.
type ReleaseRQ struct{}

// ReleaseRP is an A-RELEASE-RP PDU (PS3.8 9.3.7): likewise reserved-only.
type ReleaseRP struct{}

func (p *ReleaseRQ) Type() byte { return TypeReleaseRQ }

func (p *ReleaseRQ) Encode(w io.Writer) error {
	if err := writeHeader(w, TypeReleaseRQ, 4); err != nil {
		return err
	}
	_, err := w.Write(make([]byte, 4))
	return err
}

func (p *ReleaseRQ) decode(r io.Reader, strict bool) error {
	_, err := io.CopyN(io.Discard, r, 4)
	return err
}

func (p *ReleaseRP) Type() byte { return TypeReleaseRP }

func (p *ReleaseRP) Encode(w io.Writer) error {
	if err := writeHeader(w, TypeReleaseRP, 4); err != nil {
		return err
	}
	_, err := w.Write(make([]byte, 4))
	return err
}

func (p *ReleaseRP) decode(r io.Reader, strict bool) error {
	_, err := io.CopyN(io.Discard, r, 4)
	return err
}
