// Package fuzz exercises the Part-10 reader against arbitrary byte
// sequences, per go-fuzz's Fuzz(data []byte) int convention.
package fuzz

import (
	"bytes"

	"github.com/tvbird-dicom/dicomcore"
	"github.com/tvbird-dicom/dicomcore/ul"
)

// Fuzz feeds data into ReadDataSet, the primary malformed-input entry
// point: everything downstream (tag/VR/length parsing, scope-stack
// bookkeeping, transfer-syntax lookup) runs off of it.
func Fuzz(data []byte) int {
	ds, err := dicom.ReadDataSet(bytes.NewReader(data), dicom.ReadOptions{})
	if err != nil {
		return 0
	}
	if ds != nil {
		_ = dicom.WriteDataSet(new(bytes.Buffer), ds)
	}
	return 1
}

// FuzzPDU feeds data into ul.ReadPDU under both strict and lenient
// framing, then re-encodes whatever decoded successfully to exercise
// the round-trip property spec.md §8 requires of read_pdu/write_pdu.
func FuzzPDU(data []byte) int {
	ret := 0
	for _, strict := range []bool{false, true} {
		p, err := ul.ReadPDU(bytes.NewReader(data), ul.DefaultMaxPDULength, strict)
		if err != nil {
			continue
		}
		ret = 1
		var buf bytes.Buffer
		if err := p.Encode(&buf); err != nil {
			continue
		}
		if _, err := ul.ReadPDU(bytes.NewReader(buf.Bytes()), ul.DefaultMaxPDULength, strict); err != nil {
			continue
		}
	}
	return ret
}
