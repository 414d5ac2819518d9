package dicomts

import (
	"compress/flate"
	"fmt"
	"io"

	"github.com/tvbird-dicom/dicomcore/dicomio"
)

// WrapReader returns a reader over the dataset body appropriate for ts:
// a raw-deflate decompressor when ts.Deflated, the passed-in reader
// otherwise. DICOM's Deflated Explicit VR Little Endian transfer syntax
// uses raw deflate (no zlib/gzip framing), which is exactly what
// compress/flate implements (PS3.5 A.5). Failures surfaced while reading
// or closing the decompressor are wrapped in dicomio.ErrAdapter.
func (ts *TransferSyntax) WrapReader(r io.Reader) io.ReadCloser {
	if !ts.Deflated {
		return io.NopCloser(r)
	}
	return &adapterReadCloser{rc: flate.NewReader(r)}
}

// WrapWriter returns a writer over the dataset body appropriate for ts:
// a raw-deflate compressor when ts.Deflated, the passed-in writer
// otherwise. Callers must Close() the result to flush the last deflate
// block. Failures are wrapped in dicomio.ErrAdapter.
func (ts *TransferSyntax) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	if !ts.Deflated {
		return nopWriteCloser{w}, nil
	}
	fw, err := flate.NewWriter(w, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dicomio.ErrAdapter, err)
	}
	return &adapterWriteCloser{wc: fw}, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// adapterReadCloser wraps a deflate reader's errors in dicomio.ErrAdapter
// so callers can classify an adapter failure with errors.Is.
type adapterReadCloser struct{ rc io.ReadCloser }

func (a *adapterReadCloser) Read(p []byte) (int, error) {
	n, err := a.rc.Read(p)
	if err != nil && err != io.EOF {
		err = fmt.Errorf("%w: %v", dicomio.ErrAdapter, err)
	}
	return n, err
}

func (a *adapterReadCloser) Close() error {
	if err := a.rc.Close(); err != nil {
		return fmt.Errorf("%w: %v", dicomio.ErrAdapter, err)
	}
	return nil
}

// adapterWriteCloser wraps a deflate writer's errors in dicomio.ErrAdapter.
type adapterWriteCloser struct{ wc io.WriteCloser }

func (a *adapterWriteCloser) Write(p []byte) (int, error) {
	n, err := a.wc.Write(p)
	if err != nil {
		err = fmt.Errorf("%w: %v", dicomio.ErrAdapter, err)
	}
	return n, err
}

func (a *adapterWriteCloser) Close() error {
	if err := a.wc.Close(); err != nil {
		return fmt.Errorf("%w: %v", dicomio.ErrAdapter, err)
	}
	return nil
}
