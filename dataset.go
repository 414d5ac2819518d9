package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/tvbird-dicom/dicomcore/dicomio"
	"github.com/tvbird-dicom/dicomcore/dicomtag"
	"github.com/tvbird-dicom/dicomcore/dicomts"
)

// ImplementationClassUIDPrefix identifies this toolkit for the
// ImplementationClassUID meta element. Registering a prefix of your own is
// free at https://www.medicalconnections.co.uk/Free_UID.
const ImplementationClassUIDPrefix = "1.2.826.0.1.3680043.9.9999"

// ImplementationClassUID is the default value written for
// TagImplementationClassUID when the caller doesn't supply one.
var ImplementationClassUID = ImplementationClassUIDPrefix + ".1.1"

// ImplementationVersionName is the default value written for
// TagImplementationVersionName.
const ImplementationVersionName = "DICOMCORE_1_0"

// Dataset is the ordered list of Elements that make up one DICOM object,
// file-meta group included (Tag.Group==0x0002 elements appear first, in
// file order, like everywhere else).
type Dataset struct {
	Elements []*Element
}

// DuplicatePolicy controls what BuildDataset does when the same top-level
// tag is decoded more than once — a malformed but not uncommon occurrence
// in the wild.
type DuplicatePolicy int

const (
	// DuplicateKeepFirst discards every occurrence after the first.
	DuplicateKeepFirst DuplicatePolicy = iota
	// DuplicateKeepLast overwrites earlier occurrences with the latest.
	DuplicateKeepLast
	// DuplicateError sets the decoder's sticky error on the second
	// occurrence of any tag.
	DuplicateError
)

// ReadOptions controls how ReadDataSet and BuildDataset parse a dataset.
type ReadOptions struct {
	// DropPixelData stops parsing as soon as the PixelData element's
	// header is seen, omitting it (and anything after it) from the
	// result.
	DropPixelData bool

	// ReturnTags, when non-nil, is a whitelist: only top-level elements
	// whose Tag appears in this list are kept.
	ReturnTags []dicomtag.Tag

	// StopAtTag, when set, halts parsing once a top-level element with a
	// Tag equal to or greater than this one is read.
	StopAtTag *dicomtag.Tag

	// DuplicatePolicy decides what happens when the same top-level tag
	// appears more than once. Defaults to DuplicateKeepFirst.
	DuplicatePolicy DuplicatePolicy

	// OddLengthStrategy selects how a declared odd value length is
	// tolerated. Defaults to dicomio.OddLengthFail.
	OddLengthStrategy dicomio.OddLengthStrategy

	// CharacterSetFix, when true, decodes ISO_IR 100 text as
	// windows-1250 instead of the decoder it gets otherwise
	// (see dicomio.ParseSpecificCharacterSet).
	CharacterSetFix bool
}

func tagInList(tag dicomtag.Tag, list []dicomtag.Tag) bool {
	for _, t := range list {
		if t == tag {
			return true
		}
	}
	return false
}

// ReadDataSetInBytes is a shorthand for ReadDataSet(bytes.NewReader(data), options).
func ReadDataSetInBytes(data []byte, options ReadOptions) (*Dataset, error) {
	return ReadDataSet(bytes.NewReader(data), options)
}

// ReadDataSetFromFile parses the named file's contents into a Dataset. It
// is a thin wrapper around ReadDataSet.
func ReadDataSetFromFile(path string, options ReadOptions) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	ds, err := ReadDataSet(file, options)
	if e := file.Close(); e != nil && err == nil {
		err = e
	}
	return ds, err
}

// ReadDataSet reads a Part-10 DICOM stream from "in": the 128-byte
// preamble and "DICM" magic, the file-meta group (always Explicit VR
// Little Endian, per PS3.10 7.1), then the dataset body in whatever
// transfer syntax TransferSyntaxUID names.
//
// On parse error, this function may return a non-nil dataset and a
// non-nil error: the dataset holds whatever was parsable before the
// error was hit.
func ReadDataSet(in io.Reader, options ReadOptions) (*Dataset, error) {
	d := dicomio.NewDecoder(in, dicomio.NativeByteOrder, dicomio.ExplicitVR)
	d.SetOddLengthStrategy(options.OddLengthStrategy)

	metaElems, err := readFileMeta(d)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{Elements: metaElems}

	ts, err := resolveTransferSyntax(ds)
	if err != nil {
		return ds, err
	}

	if ts.Deflated {
		zr := ts.WrapReader(d.Underlying())
		defer zr.Close()
		bd := dicomio.NewDecoder(zr, ts.ByteOrder, ts.Implicit)
		bd.SetOddLengthStrategy(options.OddLengthStrategy)
		r := NewReader(bd, options)
		built, err := BuildDataset(r, options)
		ds.Elements = append(ds.Elements, built.Elements...)
		return ds, err
	}

	d.PushTransferSyntax(ts.ByteOrder, ts.Implicit)
	defer d.PopTransferSyntax()

	r := NewReader(d, options)
	built, err := BuildDataset(r, options)
	ds.Elements = append(ds.Elements, built.Elements...)
	return ds, err
}

// readFileMeta consumes the preamble, magic, and file-meta group (group
// 0x0002), always Explicit VR Little Endian per PS3.10 7.1.
func readFileMeta(d *dicomio.Decoder) ([]*Element, error) {
	d.PushTransferSyntax(dicomio.NativeByteOrder, dicomio.ExplicitVR)
	defer d.PopTransferSyntax()

	d.Skip(128)
	if magic := d.ReadString(4); magic != "DICM" {
		return nil, fmt.Errorf("%w: missing DICM magic", dicomio.ErrPreambleMissing)
	}

	r := NewReader(d, ReadOptions{})
	headerTok, err := r.Next()
	if err != nil {
		return nil, err
	}
	if headerTok.Kind != TokenElementHeader || headerTok.Tag != dicomtag.TagFileMetaInformationGroupLength {
		return nil, fmt.Errorf("%w: expected FileMetaInformationGroupLength first", dicomio.ErrMalformedHeader)
	}
	valueTok, err := r.Next()
	if err != nil {
		return nil, err
	}
	groupLength, ok := valueTok.Values[0].(uint32)
	if !ok || len(valueTok.Values) != 1 {
		return nil, fmt.Errorf("%w: FileMetaInformationGroupLength is not a uint32", dicomio.ErrMalformedValue)
	}

	metaElems := []*Element{{Tag: headerTok.Tag, VR: headerTok.VR, Value: valueTok.Values}}
	d.PushLimit(int64(groupLength))
	defer d.PopLimit()
	for !d.EOF() {
		tok, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return metaElems, err
		}
		if tok.Kind != TokenElementHeader {
			continue
		}
		valueTok, err := r.Next()
		if err != nil {
			return metaElems, err
		}
		metaElems = append(metaElems, &Element{Tag: tok.Tag, VR: tok.VR, Value: valueTok.Values})
	}
	if d.Error() != nil {
		return metaElems, d.Error()
	}
	return metaElems, nil
}

// resolveTransferSyntax looks up TransferSyntaxUID in the dataset's
// already-parsed meta elements and resolves it via the Transfer-Syntax
// Registry.
func resolveTransferSyntax(ds *Dataset) (*dicomts.TransferSyntax, error) {
	elem, err := ds.FindElementByTag(dicomtag.TagTransferSyntaxUID)
	if err != nil {
		return nil, err
	}
	uid, err := elem.GetString()
	if err != nil {
		return nil, err
	}
	return dicomts.Lookup(trimUID(uid))
}

// getTransferSyntax is a convenience wrapper around resolveTransferSyntax
// for callers that only need the byte order and VR style, not the full
// descriptor (e.g. whether the body is deflate-compressed).
func getTransferSyntax(ds *Dataset) (bo binary.ByteOrder, implicit dicomio.IsImplicitVR, err error) {
	ts, err := resolveTransferSyntax(ds)
	if err != nil {
		return nil, dicomio.UnknownVR, err
	}
	return ts.ByteOrder, ts.Implicit, nil
}

func trimUID(s string) string {
	for len(s) > 0 && (s[len(s)-1] == 0 || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}

// FindElementByTag returns the first element in "elems" with the given
// Tag.
func FindElementByTag(elems []*Element, tag dicomtag.Tag) (*Element, error) {
	for _, elem := range elems {
		if elem.Tag == tag {
			return elem, nil
		}
	}
	return nil, fmt.Errorf("dicom: %v: element not found", tag)
}

// FindElementByName returns the first element in "elems" whose Tag
// matches the well-known tag registered under "name".
func FindElementByName(elems []*Element, name string) (*Element, error) {
	t, err := dicomtag.FindTagByName(name)
	if err != nil {
		return nil, err
	}
	return FindElementByTag(elems, t)
}

// FindElementByTag returns the first element in the dataset with the
// given Tag, such as dicomtag.TagPatientName.
func (ds *Dataset) FindElementByTag(tag dicomtag.Tag) (*Element, error) {
	return FindElementByTag(ds.Elements, tag)
}

// FindElementByName returns the first element in the dataset whose tag is
// registered under "name", such as "PatientName".
func (ds *Dataset) FindElementByName(name string) (*Element, error) {
	return FindElementByName(ds.Elements, name)
}
