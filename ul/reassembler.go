package ul

import (
	"bytes"
	"fmt"
)

type reassemblyKey struct {
	contextID uint8
	isCommand bool
}

// Reassembler accumulates P-DATA-TF PDV fragments into complete command
// and dataset streams, keyed separately per (presentation-context-id,
// is-command) per PS3.8 9.3.5: a command stream and a dataset stream on
// the same context are independent fragment sequences, and distinct
// contexts never share one.
//
// A Reassembler is not safe for concurrent use; an association's PDU
// read loop is already single-threaded per spec.md's concurrency model.
type Reassembler struct {
	pending map[reassemblyKey]*bytes.Buffer
}

// NewReassembler returns an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{pending: map[reassemblyKey]*bytes.Buffer{}}
}

// Feed appends one PDV's data to its stream. When the PDV is marked as
// the last fragment, Feed returns the complete reassembled stream and
// true; otherwise it returns (nil, false, nil) and keeps buffering.
func (a *Reassembler) Feed(pdv PresentationDataValue) (data []byte, complete bool, err error) {
	key := reassemblyKey{contextID: pdv.PresentationContextID, isCommand: pdv.IsCommand()}
	buf, ok := a.pending[key]
	if !ok {
		buf = &bytes.Buffer{}
		a.pending[key] = buf
	}
	if _, err := buf.Write(pdv.Data); err != nil {
		return nil, false, fmt.Errorf("ul: reassemble context %d: %w", pdv.PresentationContextID, err)
	}
	if !pdv.IsLastFragment() {
		return nil, false, nil
	}
	delete(a.pending, key)
	return buf.Bytes(), true, nil
}

// FeedPDU feeds every PDV in a DataTF PDU to Feed, in order, invoking fn
// for each stream that completes.
func (a *Reassembler) FeedPDU(p *DataTF, fn func(contextID uint8, isCommand bool, data []byte) error) error {
	for _, pdv := range p.Items {
		data, complete, err := a.Feed(pdv)
		if err != nil {
			return err
		}
		if !complete {
			continue
		}
		if err := fn(pdv.PresentationContextID, pdv.IsCommand(), data); err != nil {
			return err
		}
	}
	return nil
}

// Pending reports whether any stream has buffered-but-incomplete
// fragments, e.g. to detect an association torn down mid-message.
func (a *Reassembler) Pending() bool {
	return len(a.pending) > 0
}

// FragmentStream splits data into PDV items of at most maxFragment bytes
// each (the negotiated max-PDU-length, minus the 6-byte PDU header and
// each PDV's own 6-byte item overhead, is the caller's responsibility to
// compute), marking the last one with the last-fragment bit. An empty
// data still yields exactly one (possibly empty) PDV, so that a
// zero-length command or dataset round-trips.
func FragmentStream(contextID uint8, isCommand bool, data []byte, maxFragment int) []PresentationDataValue {
	if maxFragment <= 0 {
		maxFragment = len(data)
		if maxFragment == 0 {
			maxFragment = 1
		}
	}
	var items []PresentationDataValue
	for offset := 0; offset < len(data) || len(items) == 0; {
		end := offset + maxFragment
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]
		offset = end
		items = append(items, NewPDV(contextID, isCommand, offset >= len(data), chunk))
	}
	return items
}
