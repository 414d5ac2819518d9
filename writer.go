package dicom

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tvbird-dicom/dicomcore/dicomio"
	"github.com/tvbird-dicom/dicomcore/dicomlog"
	"github.com/tvbird-dicom/dicomcore/dicomtag"
	"github.com/tvbird-dicom/dicomcore/pixel"
)

// WriteOptSet is the flattened option set after all WriteOptions have
// been applied.
type WriteOptSet struct {
	SkipVRVerification bool
}

func toWriteOptSet(opts ...WriteOption) *WriteOptSet {
	optSet := &WriteOptSet{}
	for _, opt := range opts {
		opt(optSet)
	}
	return optSet
}

// WriteOption configures WriteDataSet. Later options override earlier
// ones when they conflict.
type WriteOption func(*WriteOptSet)

// SkipVRVerification returns a WriteOption that skips cross-checking an
// element's VR against the dictionary's standard VR for its tag.
func SkipVRVerification() WriteOption {
	return func(set *WriteOptSet) { set.SkipVRVerification = true }
}

// WriteFileHeader writes the 128-byte preamble, "DICM" magic, and the
// file-meta group (always Explicit VR Little Endian, PS3.10 7.1).
// metaElems must include at least TagMediaStorageSOPClassUID,
// TagMediaStorageSOPInstanceUID, and TagTransferSyntaxUID; every element
// in it must have Tag.Group==dicomtag.MetadataGroup.
func WriteFileHeader(e *dicomio.Encoder, metaElems []*Element, opts *WriteOptSet) {
	e.PushTransferSyntax(binary.LittleEndian, dicomio.ExplicitVR)
	defer e.PopTransferSyntax()

	subEncoder := dicomio.NewBytesEncoder(binary.LittleEndian, dicomio.ExplicitVR)
	tagsUsed := make(map[dicomtag.Tag]bool)
	tagsUsed[dicomtag.TagFileMetaInformationGroupLength] = true
	writeRequiredMetaElem := func(tag dicomtag.Tag) {
		if elem, err := FindElementByTag(metaElems, tag); err == nil {
			WriteElement(subEncoder, elem, opts)
		} else {
			subEncoder.SetErrorf("%v not found in metaelems: %v", dicomtag.String(tag), err)
		}
		tagsUsed[tag] = true
	}
	writeOptionalMetaElem := func(tag dicomtag.Tag, defaultValue interface{}) {
		if elem, err := FindElementByTag(metaElems, tag); err == nil {
			WriteElement(subEncoder, elem, opts)
		} else {
			WriteElement(subEncoder, MustNewElement(tag, defaultValue), opts)
		}
		tagsUsed[tag] = true
	}
	writeOptionalMetaElem(dicomtag.TagFileMetaInformationVersion, []byte("0 1"))
	writeRequiredMetaElem(dicomtag.TagMediaStorageSOPClassUID)
	writeRequiredMetaElem(dicomtag.TagMediaStorageSOPInstanceUID)
	writeRequiredMetaElem(dicomtag.TagTransferSyntaxUID)
	writeOptionalMetaElem(dicomtag.TagImplementationClassUID, ImplementationClassUID)
	writeOptionalMetaElem(dicomtag.TagImplementationVersionName, ImplementationVersionName)
	for _, elem := range metaElems {
		if elem.Tag.Group == dicomtag.MetadataGroup && !tagsUsed[elem.Tag] {
			WriteElement(subEncoder, elem, opts)
		}
	}
	if subEncoder.Error() != nil {
		e.SetError(subEncoder.Error())
		return
	}
	metaBytes := subEncoder.Bytes()
	e.WriteZeros(128)
	e.WriteString("DICM")
	WriteElement(e, MustNewElement(dicomtag.TagFileMetaInformationGroupLength, uint32(len(metaBytes))), opts)
	e.WriteBytes(metaBytes)
}

func encodeElementHeader(e *dicomio.Encoder, tag dicomtag.Tag, vr string, vl uint32) {
	e.WriteUInt16(tag.Group)
	e.WriteUInt16(tag.Element)

	_, implicit := e.TransferSyntax()
	if tag.Group == dicomtag.TagItem.Group {
		implicit = dicomio.ImplicitVR
	}
	if implicit == dicomio.ExplicitVR {
		e.WriteString(vr)
		if dicomtag.LongValueLengthVRs[dicomtag.VR(vr)] {
			e.WriteZeros(2)
			e.WriteUInt32(vl)
		} else {
			e.WriteUInt16(uint16(vl))
		}
	} else {
		e.WriteUInt32(vl)
	}
}

func verifyVROrDefault(t dicomtag.Tag, vr string, opts *WriteOptSet) (string, error) {
	if vr != "" && opts.SkipVRVerification {
		return vr, nil
	}
	info, err := dicomtag.FindTag(t)
	if err != nil {
		if vr == "" {
			vr = "UN"
		}
		return vr, nil
	}
	if vr == "" {
		return info.VR, nil
	}
	if !opts.SkipVRVerification && info.VR != vr {
		if dicomtag.GetVRKind(t, info.VR) != dicomtag.GetVRKind(t, vr) {
			return "", fmt.Errorf("dicom: VR mismatch for tag %v: element has %v, dictionary says %v",
				dicomtag.String(t), vr, info.VR)
		}
		dicomlog.Vprintf(1, "dicom.WriteElement: VR mismatch for tag %s: element has %v, dictionary says %v (continuing)",
			dicomtag.String(t), vr, info.VR)
	}
	return vr, nil
}

// WriteElement encodes one data element. Each value in elem.Value must
// match the Go type dicomtag.GetVRKind(elem.Tag, vr) expects. Errors are
// reported through e.Error().
func WriteElement(e *dicomio.Encoder, elem *Element, opts *WriteOptSet) {
	vr, err := verifyVROrDefault(elem.Tag, elem.VR, opts)
	if err != nil {
		e.SetError(err)
		return
	}

	if elem.Tag == dicomtag.TagPixelData {
		writePixelData(e, elem, vr)
		return
	}
	if vr == "SQ" {
		writeSequence(e, elem, vr, opts)
		return
	}
	if elem.Tag == dicomtag.TagItem {
		writeItem(e, elem, vr, opts)
		return
	}
	writeScalar(e, elem, vr)
}

func writePixelData(e *dicomio.Encoder, elem *Element, vr string) {
	if len(elem.Value) != 1 {
		e.SetErrorf("dicom: PixelData element must have exactly one value")
		return
	}
	if elem.UndefinedLength {
		seq, ok := elem.Value[0].(*pixel.Sequence)
		if !ok {
			e.SetErrorf("dicom: undefined-length PixelData must hold a *pixel.Sequence")
			return
		}
		encodeElementHeader(e, elem.Tag, vr, undefinedLength)
		e.WriteBytes(seq.Encode())
		return
	}
	raw, ok := elem.Value[0].([]byte)
	if !ok {
		e.SetErrorf("dicom: defined-length PixelData must hold a []byte")
		return
	}
	encodeElementHeader(e, elem.Tag, vr, uint32(len(raw)))
	e.WriteBytes(raw)
}

func writeSequence(e *dicomio.Encoder, elem *Element, vr string, opts *WriteOptSet) {
	if elem.UndefinedLength {
		encodeElementHeader(e, elem.Tag, vr, undefinedLength)
		for _, value := range elem.Value {
			subelem, ok := value.(*Element)
			if !ok || subelem.Tag != dicomtag.TagItem {
				e.SetErrorf("dicom: SQ element must contain Items, found %v", value)
				return
			}
			WriteElement(e, subelem, opts)
		}
		encodeElementHeader(e, dicomtag.TagSequenceDelimitationItem, "", 0)
		return
	}
	sube := dicomio.NewBytesEncoder(e.TransferSyntax())
	for _, value := range elem.Value {
		subelem, ok := value.(*Element)
		if !ok || subelem.Tag != dicomtag.TagItem {
			e.SetErrorf("dicom: SQ element must contain Items, found %v", value)
			return
		}
		WriteElement(sube, subelem, opts)
	}
	if sube.Error() != nil {
		e.SetError(sube.Error())
		return
	}
	bytes := sube.Bytes()
	encodeElementHeader(e, elem.Tag, vr, uint32(len(bytes)))
	e.WriteBytes(bytes)
}

func writeItem(e *dicomio.Encoder, elem *Element, vr string, opts *WriteOptSet) {
	if elem.UndefinedLength {
		encodeElementHeader(e, elem.Tag, vr, undefinedLength)
		for _, value := range elem.Value {
			subelem, ok := value.(*Element)
			if !ok {
				e.SetErrorf("dicom: Item values must be Elements, found %v", value)
				return
			}
			WriteElement(e, subelem, opts)
		}
		encodeElementHeader(e, dicomtag.TagItemDelimitationItem, "", 0)
		return
	}
	sube := dicomio.NewBytesEncoder(e.TransferSyntax())
	for _, value := range elem.Value {
		subelem, ok := value.(*Element)
		if !ok {
			e.SetErrorf("dicom: Item values must be Elements, found %v", value)
			return
		}
		WriteElement(sube, subelem, opts)
	}
	if sube.Error() != nil {
		e.SetError(sube.Error())
		return
	}
	bytes := sube.Bytes()
	encodeElementHeader(e, elem.Tag, vr, uint32(len(bytes)))
	e.WriteBytes(bytes)
}

func writeScalar(e *dicomio.Encoder, elem *Element, vr string) {
	if elem.UndefinedLength && vr != "UN" {
		e.SetErrorf("dicom: undefined length not supported for VR %s", vr)
		return
	}
	sube := dicomio.NewBytesEncoder(e.TransferSyntax())
	switch vr {
	case "US":
		for _, value := range elem.Value {
			v, ok := value.(uint16)
			if !ok {
				e.SetErrorf("%v: expect uint16, found %v", dicomtag.String(elem.Tag), value)
				continue
			}
			sube.WriteUInt16(v)
		}
	case "UL":
		for _, value := range elem.Value {
			v, ok := value.(uint32)
			if !ok {
				e.SetErrorf("%v: expect uint32, found %v", dicomtag.String(elem.Tag), value)
				continue
			}
			sube.WriteUInt32(v)
		}
	case "SL":
		for _, value := range elem.Value {
			v, ok := value.(int32)
			if !ok {
				e.SetErrorf("%v: expect int32, found %v", dicomtag.String(elem.Tag), value)
				continue
			}
			sube.WriteInt32(v)
		}
	case "SS":
		for _, value := range elem.Value {
			v, ok := value.(int16)
			if !ok {
				e.SetErrorf("%v: expect int16, found %v", dicomtag.String(elem.Tag), value)
				continue
			}
			sube.WriteInt16(v)
		}
	case "FL":
		for _, value := range elem.Value {
			v, ok := value.(float32)
			if !ok {
				e.SetErrorf("%v: expect float32, found %v", dicomtag.String(elem.Tag), value)
				continue
			}
			sube.WriteFloat32(v)
		}
	case "FD":
		for _, value := range elem.Value {
			v, ok := value.(float64)
			if !ok {
				e.SetErrorf("%v: expect float64, found %v", dicomtag.String(elem.Tag), value)
				continue
			}
			sube.WriteFloat64(v)
		}
	case "OW", "OB", "OD", "OF", "OL", "OV", "UN":
		if len(elem.Value) != 1 {
			e.SetErrorf("%v: expect a single binary value, found %v", dicomtag.String(elem.Tag), elem.Value)
			break
		}
		raw, ok := elem.Value[0].([]byte)
		if !ok {
			e.SetErrorf("%v: expect a []byte value, found %v", dicomtag.String(elem.Tag), elem.Value[0])
			break
		}
		sube.WriteBytes(raw)
		if len(raw)%2 == 1 {
			sube.WriteByte(dicomtag.PadByte(dicomtag.VR(vr)))
		}
	case "AT":
		for _, value := range elem.Value {
			v, ok := value.(dicomtag.Tag)
			if !ok {
				e.SetErrorf("%v: expect a Tag value, found %v", dicomtag.String(elem.Tag), value)
				continue
			}
			sube.WriteUInt16(v.Group)
			sube.WriteUInt16(v.Element)
		}
	default:
		s := ""
		for i, value := range elem.Value {
			var substr string
			switch v := value.(type) {
			case string:
				substr = v
			case dicomtag.Tag:
				substr = fmt.Sprintf("%04X%04X", v.Group, v.Element)
			default:
				substr = fmt.Sprintf("%v", v)
			}
			if i > 0 {
				s += "\\"
			}
			s += substr
		}
		sube.WriteString(s)
		if len(s)%2 == 1 {
			sube.WriteByte(dicomtag.PadByte(dicomtag.VR(vr)))
		}
	}
	if sube.Error() != nil {
		e.SetError(sube.Error())
		return
	}
	bytes := sube.Bytes()
	encodeElementHeader(e, elem.Tag, vr, uint32(len(bytes)))
	e.WriteBytes(bytes)
}

// WriteDataSet writes ds to "out" in Part-10 file format: the preamble
// and magic, the file-meta group, then the dataset body in whatever
// transfer syntax ds's TransferSyntaxUID element names. Deflated
// Explicit VR Little Endian compresses the dataset body (but never the
// file-meta group) with raw deflate, per PS3.5 A.5.
func WriteDataSet(out io.Writer, ds *Dataset, opts ...WriteOption) error {
	optSet := toWriteOptSet(opts...)
	e := dicomio.NewEncoder(out, nil, dicomio.UnknownVR)
	var metaElems []*Element
	for _, elem := range ds.Elements {
		if elem.Tag.Group == dicomtag.MetadataGroup {
			metaElems = append(metaElems, elem)
		}
	}
	WriteFileHeader(e, metaElems, optSet)
	if e.Error() != nil {
		return e.Error()
	}
	ts, err := resolveTransferSyntax(ds)
	if err != nil {
		return err
	}

	// The body is emitted in ascending tag order, whatever the order of
	// ds.Elements.
	var body []*Element
	for _, elem := range ds.Elements {
		if elem.Tag.Group != dicomtag.MetadataGroup {
			body = append(body, elem)
		}
	}
	sort.SliceStable(body, func(i, j int) bool { return body[i].Tag.Less(body[j].Tag) })

	if ts.Deflated {
		bodyWriter, err := ts.WrapWriter(out)
		if err != nil {
			return err
		}
		be := dicomio.NewEncoder(bodyWriter, ts.ByteOrder, ts.Implicit)
		for _, elem := range body {
			WriteElement(be, elem, optSet)
		}
		bodyErr := be.Error()
		if cerr := bodyWriter.Close(); cerr != nil && bodyErr == nil {
			bodyErr = cerr
		}
		return bodyErr
	}

	e.PushTransferSyntax(ts.ByteOrder, ts.Implicit)
	for _, elem := range body {
		WriteElement(e, elem, optSet)
	}
	e.PopTransferSyntax()
	return e.Error()
}

// WriteDataSetToFile writes ds to the named file, creating it or
// truncating an existing one.
func WriteDataSetToFile(path string, ds *Dataset, opts ...WriteOption) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteDataSet(out, ds, opts...); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
