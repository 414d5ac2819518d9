// Package pixel implements encoding and decoding of encapsulated
// (compressed) PixelData: the Basic Offset Table plus an ordered sequence
// of binary fragments defined by PS3.5 Annex A.4.
package pixel

import (
	"encoding/binary"
	"fmt"
)

// Structural tags used to frame encapsulated pixel data (PS3.5 7.5,
// Annex A.4). These mirror dicomtag's well-known delimiter tags but are
// kept local to avoid an import cycle (dicom imports pixel for the
// Sequence value type).
const (
	itemTagGroup         uint16 = 0xFFFE
	itemTag              uint16 = 0xE000
	sequenceDelimiterTag uint16 = 0xE0DD

	// itemOverhead is the wire cost of one Item's tag+length header
	// (4-byte tag + 4-byte length, Implicit VR per PS3.5 7.5).
	itemOverhead = 8
)

// Fragment is one binary fragment of encapsulated pixel data.
type Fragment struct {
	Data []byte
}

// Sequence is the decoded (or to-be-encoded) form of an encapsulated
// PixelData element: a Basic Offset Table plus the ordered fragments that
// follow it.
//
// Offsets[i], when present, is the byte offset of frame i's first
// fragment, measured from the first byte following the Basic Offset Table
// item — i.e. it counts the itemOverhead of every preceding fragment's
// Item header, not just fragment payload bytes. An empty Offsets means
// the table was absent on the wire: every Fragment is then assumed to be
// exactly one whole frame.
type Sequence struct {
	Offsets   []uint32
	Fragments []Fragment
}

// ParseFragments decodes the body of an encapsulated PixelData element —
// the bytes between the element's header and the SequenceDelimitationItem
// — into a Sequence. "data" must start with the Basic Offset Table item
// (which may have zero length).
func ParseFragments(data []byte) (*Sequence, error) {
	seq := &Sequence{}
	offset := 0
	first := true
	for offset < len(data) {
		if offset+itemOverhead > len(data) {
			return nil, fmt.Errorf("pixel: truncated item header at offset %d", offset)
		}
		group := binary.LittleEndian.Uint16(data[offset : offset+2])
		elem := binary.LittleEndian.Uint16(data[offset+2 : offset+4])
		length := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += itemOverhead

		if group == itemTagGroup && elem == sequenceDelimiterTag {
			return seq, nil
		}
		if group != itemTagGroup || elem != itemTag {
			return nil, fmt.Errorf("pixel: expected Item tag (fffe,e000), got (%04x,%04x) at offset %d", group, elem, offset-itemOverhead)
		}
		if offset+int(length) > len(data) {
			return nil, fmt.Errorf("pixel: fragment length %d exceeds available data at offset %d", length, offset)
		}
		payload := data[offset : offset+int(length)]
		offset += int(length)

		if first {
			first = false
			offsets, err := parseOffsetTable(payload)
			if err != nil {
				return nil, err
			}
			seq.Offsets = offsets
			continue
		}
		seq.Fragments = append(seq.Fragments, Fragment{Data: payload})
	}
	return nil, fmt.Errorf("pixel: missing SequenceDelimitationItem")
}

func parseOffsetTable(payload []byte) ([]uint32, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	if len(payload)%4 != 0 {
		return nil, fmt.Errorf("pixel: basic offset table length %d not a multiple of 4", len(payload))
	}
	offsets := make([]uint32, len(payload)/4)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(payload[i*4 : i*4+4])
	}
	return offsets, nil
}

// FromItems builds a Sequence from already-delimited item payloads:
// items[0] is the Basic Offset Table payload (often empty), items[1:]
// are fragment payloads, in wire order. Used by callers that have
// already split a fffe,e000 item stream apart (the Dataset Tokenizer's
// scope stack does this as it walks an encapsulated PixelData element)
// and just need the Basic Offset Table decoded.
func FromItems(items [][]byte) (*Sequence, error) {
	if len(items) == 0 {
		return &Sequence{}, nil
	}
	offsets, err := parseOffsetTable(items[0])
	if err != nil {
		return nil, err
	}
	seq := &Sequence{Offsets: offsets}
	for _, payload := range items[1:] {
		seq.Fragments = append(seq.Fragments, Fragment{Data: payload})
	}
	return seq, nil
}

// NumFrames returns the number of frames represented, per the Basic
// Offset Table when present, else the fragment count (one fragment per
// frame).
func (s *Sequence) NumFrames() int {
	if len(s.Offsets) > 0 {
		return len(s.Offsets)
	}
	return len(s.Fragments)
}

// Frame reassembles frame "index" by concatenating its fragment(s).
func (s *Sequence) Frame(index int) ([]byte, error) {
	if len(s.Offsets) == 0 {
		if index >= len(s.Fragments) {
			return nil, fmt.Errorf("pixel: frame %d out of range (%d fragments)", index, len(s.Fragments))
		}
		return s.Fragments[index].Data, nil
	}
	if index >= len(s.Offsets) {
		return nil, fmt.Errorf("pixel: frame %d out of range (%d frames)", index, len(s.Offsets))
	}

	// Recompute each fragment's wire offset to map the BOT's offsets back
	// to fragment indices.
	fragOffsets := make([]uint32, len(s.Fragments))
	var cur uint32
	for i, f := range s.Fragments {
		fragOffsets[i] = cur
		cur += itemOverhead + uint32(len(f.Data))
	}

	start := s.Offsets[index]
	var end uint32 = cur
	if index+1 < len(s.Offsets) {
		end = s.Offsets[index+1]
	}

	var out []byte
	for i, off := range fragOffsets {
		if off >= start && off < end {
			out = append(out, s.Fragments[i].Data...)
		}
	}
	if out == nil {
		return nil, fmt.Errorf("pixel: no fragments found for frame %d (offset %d..%d)", index, start, end)
	}
	return out, nil
}

// EncodeFragments builds a Sequence from whole frames, splitting each
// frame into fixed-size fragments of "fragmentSize" bytes (the last
// fragment of a frame is zero-padded up to fragmentSize when the frame's
// length isn't a multiple of it), and recording one Basic Offset Table
// entry per frame boundary. fragmentSize must be even and positive.
func EncodeFragments(frames [][]byte, fragmentSize int) (*Sequence, error) {
	if fragmentSize <= 0 || fragmentSize%2 != 0 {
		return nil, fmt.Errorf("pixel: fragmentSize must be a positive even number, got %d", fragmentSize)
	}
	seq := &Sequence{Offsets: make([]uint32, len(frames))}
	var cur uint32
	for i, frame := range frames {
		seq.Offsets[i] = cur
		for off := 0; off < len(frame); off += fragmentSize {
			end := off + fragmentSize
			var chunk []byte
			if end <= len(frame) {
				chunk = frame[off:end]
			} else {
				chunk = make([]byte, fragmentSize)
				copy(chunk, frame[off:])
			}
			seq.Fragments = append(seq.Fragments, Fragment{Data: chunk})
			cur += itemOverhead + uint32(len(chunk))
		}
		if len(frame) == 0 {
			// An empty frame still needs a fragment to keep one BOT entry
			// meaningful, matching at least one Item per frame.
			seq.Fragments = append(seq.Fragments, Fragment{Data: []byte{}})
			cur += itemOverhead
		}
	}
	return seq, nil
}

// Encode serializes the Sequence's Basic Offset Table and fragments into
// the wire form expected between an encapsulated PixelData element's
// header and its SequenceDelimitationItem: one Item per table/fragment,
// Implicit VR little-endian framed (PS3.5 7.5).
func (s *Sequence) Encode() []byte {
	var out []byte
	writeItem := func(payload []byte) {
		var hdr [8]byte
		binary.LittleEndian.PutUint16(hdr[0:2], itemTagGroup)
		binary.LittleEndian.PutUint16(hdr[2:4], itemTag)
		binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
		out = append(out, hdr[:]...)
		out = append(out, payload...)
	}

	bot := make([]byte, 4*len(s.Offsets))
	for i, off := range s.Offsets {
		binary.LittleEndian.PutUint32(bot[i*4:i*4+4], off)
	}
	writeItem(bot)
	for _, f := range s.Fragments {
		writeItem(f.Data)
	}

	var delim [8]byte
	binary.LittleEndian.PutUint16(delim[0:2], itemTagGroup)
	binary.LittleEndian.PutUint16(delim[2:4], sequenceDelimiterTag)
	out = append(out, delim[:]...)
	return out
}
