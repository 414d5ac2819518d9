// Package dicom implements the Object Builder, Dataset Tokenizer, and File
// Layer: the DICOM in-memory data model, a lazy token stream over an
// element sequence, and Part-10 file read/write built on top of it.
package dicom

import (
	"fmt"
	"strings"

	"github.com/tvbird-dicom/dicomcore/dicomtag"
	"github.com/tvbird-dicom/dicomcore/pixel"
)

// Element is one DICOM data element: a tag, its VR, and one or more
// values. The concrete Go type(s) stored in Value depend on
// dicomtag.GetVRKind(Tag, VR):
//
//	VRString                  []string
//	VRBytes                   []byte (single element)
//	VRUInt16                  []uint16
//	VRUInt32                  []uint32
//	VRInt16                   []int16
//	VRInt32                   []int32
//	VRFloat32                 []float32
//	VRFloat64                 []float64
//	VRTag                     []dicomtag.Tag
//	VRSequence                []*Element (each with Tag==dicomtag.TagItem)
//	VRItem                    []*Element (the item's member elements)
//	VRPixelData               *pixel.Sequence
type Element struct {
	Tag             dicomtag.Tag
	VR              string
	Value           []interface{}
	UndefinedLength bool
}

// NewElement constructs an Element, verifying that each value in "values"
// matches the Go type dicomtag.GetVRKind expects for (tag, vr).
func NewElement(tag dicomtag.Tag, vr string, values ...interface{}) (*Element, error) {
	kind := dicomtag.GetVRKind(tag, vr)
	for _, v := range values {
		if !valueMatchesKind(kind, v) {
			return nil, fmt.Errorf("dicom: value %v (%T) does not match VR %s for tag %v", v, v, vr, tag)
		}
	}
	return &Element{Tag: tag, VR: vr, Value: values}, nil
}

// MustNewElement is like NewElement but panics on error. Useful for
// constructing well-known meta elements.
func MustNewElement(tag dicomtag.Tag, values ...interface{}) *Element {
	info, err := dicomtag.FindTag(tag)
	vr := "UN"
	if err == nil {
		vr = info.VR
	}
	e, err := NewElement(tag, vr, values...)
	if err != nil {
		panic(err)
	}
	return e
}

func valueMatchesKind(kind dicomtag.VRKind, v interface{}) bool {
	switch kind {
	case dicomtag.VRString, dicomtag.VRDate, dicomtag.VRTime, dicomtag.VRDateTime:
		_, ok := v.(string)
		return ok
	case dicomtag.VRBytes:
		_, ok := v.([]byte)
		return ok
	case dicomtag.VRUInt16:
		_, ok := v.(uint16)
		return ok
	case dicomtag.VRUInt32:
		_, ok := v.(uint32)
		return ok
	case dicomtag.VRInt16:
		_, ok := v.(int16)
		return ok
	case dicomtag.VRInt32:
		_, ok := v.(int32)
		return ok
	case dicomtag.VRFloat32:
		_, ok := v.(float32)
		return ok
	case dicomtag.VRFloat64:
		_, ok := v.(float64)
		return ok
	case dicomtag.VRTag:
		_, ok := v.(dicomtag.Tag)
		return ok
	case dicomtag.VRSequence, dicomtag.VRItem:
		_, ok := v.(*Element)
		return ok
	case dicomtag.VRPixelData:
		_, ok := v.(*pixel.Sequence)
		return ok
	default:
		return true
	}
}

// GetString returns the element's sole string value.
func (e *Element) GetString() (string, error) {
	if len(e.Value) != 1 {
		return "", fmt.Errorf("dicom: tag %v has %d values, want exactly one", e.Tag, len(e.Value))
	}
	s, ok := e.Value[0].(string)
	if !ok {
		return "", fmt.Errorf("dicom: tag %v value is not a string", e.Tag)
	}
	return s, nil
}

// MustGetString is like GetString but panics on error.
func (e *Element) MustGetString() string {
	s, err := e.GetString()
	if err != nil {
		panic(err)
	}
	return s
}

// GetStrings splits the element's backslash-separated string value(s)
// into a flat slice, per PS3.5 6.4's value-multiplicity convention.
func (e *Element) GetStrings() ([]string, error) {
	var out []string
	for _, v := range e.Value {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("dicom: tag %v value is not a string", e.Tag)
		}
		out = append(out, strings.Split(s, "\\")...)
	}
	return out, nil
}

// MustGetStrings is like GetStrings but panics on error.
func (e *Element) MustGetStrings() []string {
	s, err := e.GetStrings()
	if err != nil {
		panic(err)
	}
	return s
}

// GetUInt32 returns the element's sole uint32 value.
func (e *Element) GetUInt32() (uint32, error) {
	if len(e.Value) != 1 {
		return 0, fmt.Errorf("dicom: tag %v has %d values, want exactly one", e.Tag, len(e.Value))
	}
	v, ok := e.Value[0].(uint32)
	if !ok {
		return 0, fmt.Errorf("dicom: tag %v value is not a uint32", e.Tag)
	}
	return v, nil
}

// GetUInt16 returns the element's sole uint16 value.
func (e *Element) GetUInt16() (uint16, error) {
	if len(e.Value) != 1 {
		return 0, fmt.Errorf("dicom: tag %v has %d values, want exactly one", e.Tag, len(e.Value))
	}
	v, ok := e.Value[0].(uint16)
	if !ok {
		return 0, fmt.Errorf("dicom: tag %v value is not a uint16", e.Tag)
	}
	return v, nil
}

// GetPixelSequence returns the element's pixel.Sequence value, when Tag is
// TagPixelData and it was decoded under an encapsulated transfer syntax.
func (e *Element) GetPixelSequence() (*pixel.Sequence, error) {
	if len(e.Value) != 1 {
		return nil, fmt.Errorf("dicom: tag %v has %d values, want exactly one", e.Tag, len(e.Value))
	}
	v, ok := e.Value[0].(*pixel.Sequence)
	if !ok {
		return nil, fmt.Errorf("dicom: tag %v is not encapsulated pixel data", e.Tag)
	}
	return v, nil
}

// String renders the element, recursively printing nested Items/Sequences
// with indentation, matching the tree shape it decodes from.
func (e *Element) String() string {
	return e.stringIndent(0)
}

func (e *Element) stringIndent(depth int) string {
	pad := strings.Repeat("  ", depth)
	name := dicomtag.String(e.Tag)
	switch dicomtag.GetVRKind(e.Tag, e.VR) {
	case dicomtag.VRSequence, dicomtag.VRItem:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s%s %s (%d items)\n", pad, name, e.VR, len(e.Value))
		for _, v := range e.Value {
			if sub, ok := v.(*Element); ok {
				sb.WriteString(sub.stringIndent(depth + 1))
			}
		}
		return sb.String()
	case dicomtag.VRPixelData:
		seq, _ := e.GetPixelSequence()
		n := 0
		if seq != nil {
			n = len(seq.Fragments)
		}
		return fmt.Sprintf("%s%s %s (%d fragments)\n", pad, name, e.VR, n)
	default:
		return fmt.Sprintf("%s%s %s %s\n", pad, name, e.VR, formatValues(e.Value))
	}
}

func formatValues(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case []byte:
			parts[i] = fmt.Sprintf("<%d bytes>", len(t))
		default:
			parts[i] = fmt.Sprintf("%v", t)
		}
	}
	s := strings.Join(parts, "\\")
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return s
}
