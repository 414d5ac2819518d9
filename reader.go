package dicom

import (
	"io"
	"strings"

	"github.com/tvbird-dicom/dicomcore/dicomio"
	"github.com/tvbird-dicom/dicomcore/dicomtag"
	"github.com/tvbird-dicom/dicomcore/pixel"
)

const undefinedLength uint32 = 0xFFFFFFFF

type scopeKind int

const (
	scopeDataset scopeKind = iota
	scopeSequence
	scopeItem
)

// scopeFrame tracks one nesting level of the token stream: the dataset
// itself, a VR=SQ element's items, an encapsulated PixelData element's
// fragments (also modeled as a sequence), or one Item's own elements.
type scopeFrame struct {
	kind            scopeKind
	tag             dicomtag.Tag
	undefinedLength bool
}

// Reader is the Dataset Tokenizer: it pulls a flat stream of Tokens out
// of an encoded element sequence, one token at a time, over an explicit
// scope stack rather than Go call-stack recursion. This is what lets
// Next() be called repeatedly across many small steps instead of
// building the whole nested element tree before returning anything —
// BuildDataset is what folds the stream back into a tree for callers
// who want one.
type Reader struct {
	d       *dicomio.Decoder
	options ReadOptions
	scopes  []scopeFrame
	pending []Token
}

// NewReader creates a Reader over the dataset body referenced by d. The
// file-meta group must already have been consumed and the dataset's
// transfer syntax pushed onto d before the first call to Next().
func NewReader(d *dicomio.Decoder, options ReadOptions) *Reader {
	return &Reader{d: d, options: options, scopes: []scopeFrame{{kind: scopeDataset}}}
}

func (r *Reader) top() scopeFrame { return r.scopes[len(r.scopes)-1] }

// Next returns the next Token, or io.EOF once the top-level dataset
// scope is exhausted.
func (r *Reader) Next() (Token, error) {
	for len(r.pending) == 0 {
		if err := r.step(); err != nil {
			return Token{}, err
		}
	}
	t := r.pending[0]
	r.pending = r.pending[1:]
	return t, nil
}

// step decodes exactly one more element header, value, or scope
// boundary from the wire into r.pending.
func (r *Reader) step() error {
	top := r.top()

	if top.kind == scopeDataset {
		if r.d.EOF() {
			return io.EOF
		}
	} else if !top.undefinedLength && r.d.BytesLeftInLimit() <= 0 {
		return r.closeScope()
	}

	tag := readTag(r.d)
	if r.d.Error() != nil {
		return r.d.Error()
	}

	if top.undefinedLength {
		if top.kind == scopeSequence && tag == dicomtag.TagSequenceDelimitationItem {
			r.d.Skip(4)
			return r.closeScope()
		}
		if top.kind == scopeItem && tag == dicomtag.TagItemDelimitationItem {
			r.d.Skip(4)
			return r.closeScope()
		}
	}

	_, implicit := r.d.TransferSyntax()
	if tag.Group == dicomtag.TagItem.Group {
		// Items and their delimiters are always encoded Implicit VR,
		// even inside an Explicit VR dataset. PS3.5 7.5.
		implicit = dicomio.ImplicitVR
	}

	var vr string
	var vl uint32
	if implicit == dicomio.ImplicitVR {
		vr, vl = r.readImplicit(tag)
	} else {
		vr, vl = r.readExplicit(tag)
	}
	r.d.CheckValueLength(vl)
	if r.d.Error() != nil {
		return r.d.Error()
	}
	undef := vl == undefinedLength
	r.pending = append(r.pending, Token{Kind: TokenElementHeader, Tag: tag, VR: vr, UndefinedLength: undef, ValueLength: vl})

	switch {
	case tag == dicomtag.TagItem && top.kind == scopeSequence && top.tag == dicomtag.TagPixelData:
		// A fragment of encapsulated pixel data: an atomic byte blob,
		// never itself a container of further elements.
		data := r.d.ReadBytes(int(vl))
		r.pending = append(r.pending,
			Token{Kind: TokenItemStart, Tag: tag},
			Token{Kind: TokenPrimitiveValue, Tag: tag, VR: "OB", Values: []interface{}{data}},
			Token{Kind: TokenItemEnd, Tag: tag})

	case tag == dicomtag.TagItem:
		r.scopes = append(r.scopes, scopeFrame{kind: scopeItem, tag: tag, undefinedLength: undef})
		if !undef {
			r.d.PushLimit(int64(vl))
		}
		r.pending = append(r.pending, Token{Kind: TokenItemStart, Tag: tag, UndefinedLength: undef, ValueLength: vl})

	case vr == "SQ":
		r.scopes = append(r.scopes, scopeFrame{kind: scopeSequence, tag: tag, undefinedLength: undef})
		if !undef {
			r.d.PushLimit(int64(vl))
		}
		r.pending = append(r.pending, Token{Kind: TokenSequenceStart, Tag: tag, UndefinedLength: undef, ValueLength: vl})

	case tag == dicomtag.TagPixelData && undef:
		// Encapsulated pixel data: PS3.5 A.4 frames it as a Basic Offset
		// Table item followed by fragment items, closed by a sequence
		// delimiter — structurally identical to a VR=SQ scope.
		r.scopes = append(r.scopes, scopeFrame{kind: scopeSequence, tag: tag, undefinedLength: true})
		r.pending = append(r.pending, Token{Kind: TokenSequenceStart, Tag: tag, UndefinedLength: true})

	default:
		if r.options.DropPixelData && tag == dicomtag.TagPixelData {
			r.d.Skip(int(vl))
			r.pending = append(r.pending, Token{Kind: TokenPrimitiveValue, Tag: tag, VR: vr})
			return nil
		}
		values := r.readPrimitiveValue(tag, vr, vl)
		if r.d.Error() != nil {
			return r.d.Error()
		}
		r.pending = append(r.pending, Token{Kind: TokenPrimitiveValue, Tag: tag, VR: vr, Values: values})
	}
	return nil
}

func (r *Reader) closeScope() error {
	top := r.top()
	r.scopes = r.scopes[:len(r.scopes)-1]
	if !top.undefinedLength && top.kind != scopeDataset {
		r.d.PopLimit()
	}
	switch top.kind {
	case scopeSequence:
		r.pending = append(r.pending, Token{Kind: TokenSequenceEnd, Tag: top.tag})
	case scopeItem:
		r.pending = append(r.pending, Token{Kind: TokenItemEnd, Tag: top.tag})
	}
	return nil
}

func readTag(d *dicomio.Decoder) dicomtag.Tag {
	group := d.ReadUInt16()
	element := d.ReadUInt16()
	return dicomtag.Tag{Group: group, Element: element}
}

func (r *Reader) checkOddLength(vl uint32) uint32 {
	if vl == undefinedLength || vl%2 == 0 {
		return vl
	}
	switch r.d.OddLengthStrategy() {
	case dicomio.OddLengthRoundUp:
		return vl + 1
	case dicomio.OddLengthAccept:
		return vl
	default:
		r.d.SetErrorf("%w: declared length %d", dicomio.ErrOddLength, vl)
		return vl
	}
}

// readImplicit reads an Implicit VR element's 4-byte value length,
// looking up the VR from the dictionary (PS3.5 7.1.3).
func (r *Reader) readImplicit(tag dicomtag.Tag) (string, uint32) {
	vr := "UN"
	if info, err := dicomtag.FindTag(tag); err == nil {
		vr = info.VR
	}
	vl := r.d.ReadUInt32()
	if vl == 0xFFFFFFFF {
		vl = undefinedLength
	}
	return vr, r.checkOddLength(vl)
}

// readExplicit reads an Explicit VR element's 2-byte VR code and either
// a 2-byte or 4-byte value length, depending on whether the VR is one of
// the "long" VRs (PS3.5 7.1.2).
func (r *Reader) readExplicit(tag dicomtag.Tag) (string, uint32) {
	vr := r.d.ReadString(2)
	var vl uint32
	if dicomtag.LongValueLengthVRs[dicomtag.VR(vr)] {
		r.d.Skip(2) // reserved
		vl = r.d.ReadUInt32()
		if vl == 0xFFFFFFFF {
			if dicomtag.ForbidsUndefinedLength[dicomtag.VR(vr)] {
				r.d.SetErrorf("%w: VR %s forbids undefined length", dicomio.ErrMalformedValue, vr)
			}
			vl = undefinedLength
		}
	} else {
		vl = uint32(r.d.ReadUInt16())
		if vl == 0xFFFF {
			vl = undefinedLength
		}
	}
	return vr, r.checkOddLength(vl)
}

func (r *Reader) decodeString(raw string) string {
	cs := r.d.CodingSystem()
	if cs.Alphabetic != nil {
		if out, err := cs.Alphabetic.String(raw); err == nil {
			return out
		}
	}
	return raw
}

// readPrimitiveValue decodes the value of any non-SQ, non-Item,
// non-encapsulated-PixelData element, per its VRKind.
func (r *Reader) readPrimitiveValue(tag dicomtag.Tag, vr string, vl uint32) []interface{} {
	if vl == undefinedLength {
		r.d.SetErrorf("%w: undefined length not allowed for VR %s", dicomio.ErrMalformedValue, vr)
		return nil
	}
	r.d.PushLimit(int64(vl))
	defer r.d.PopLimit()

	var values []interface{}
	switch dicomtag.GetVRKind(tag, vr) {
	case dicomtag.VRTag:
		for r.d.BytesLeftInLimit() > 0 {
			values = append(values, dicomtag.Tag{Group: r.d.ReadUInt16(), Element: r.d.ReadUInt16()})
		}
	case dicomtag.VRUInt16:
		for r.d.BytesLeftInLimit() > 0 {
			values = append(values, r.d.ReadUInt16())
		}
	case dicomtag.VRUInt32:
		for r.d.BytesLeftInLimit() > 0 {
			values = append(values, r.d.ReadUInt32())
		}
	case dicomtag.VRInt16:
		for r.d.BytesLeftInLimit() > 0 {
			values = append(values, r.d.ReadInt16())
		}
	case dicomtag.VRInt32:
		for r.d.BytesLeftInLimit() > 0 {
			values = append(values, r.d.ReadInt32())
		}
	case dicomtag.VRFloat32:
		for r.d.BytesLeftInLimit() > 0 {
			values = append(values, r.d.ReadFloat32())
		}
	case dicomtag.VRFloat64:
		for r.d.BytesLeftInLimit() > 0 {
			values = append(values, r.d.ReadFloat64())
		}
	case dicomtag.VRBytes:
		values = append(values, r.d.ReadBytes(int(vl)))
	default:
		raw := r.d.ReadString(vl)
		raw = strings.TrimRight(raw, " \x00")
		if raw != "" {
			for _, s := range strings.Split(raw, "\\") {
				values = append(values, r.decodeString(s))
			}
		}
	}
	return values
}

// BuildDataset is the Object Builder: it drains r's token stream,
// folding SequenceStart/ItemStart...End spans back into nested *Element
// trees, and applying ReturnTags/StopAtTag/DuplicatePolicy filtering at
// the top level.
func BuildDataset(r *Reader, options ReadOptions) (*Dataset, error) {
	ds := &Dataset{}
	indexOf := map[dicomtag.Tag]int{}

	var stack []*Element
	var cur *Element
	stopped := false

	attach := func(e *Element) {
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.Value = append(parent.Value, e)
			return
		}
		if options.ReturnTags != nil && !tagInList(e.Tag, options.ReturnTags) {
			return
		}
		if idx, dup := indexOf[e.Tag]; dup {
			switch options.DuplicatePolicy {
			case DuplicateKeepLast:
				ds.Elements[idx] = e
			case DuplicateError:
				r.d.SetErrorf("dicom: duplicate top-level tag %v", e.Tag)
			default: // DuplicateKeepFirst
			}
			return
		}
		indexOf[e.Tag] = len(ds.Elements)
		ds.Elements = append(ds.Elements, e)

		// SpecificCharacterSet governs the decoding of every subsequent
		// string-valued element in the dataset, so the coding system
		// must switch the moment the element is seen rather than after
		// the whole dataset is built.
		if e.Tag == dicomtag.TagSpecificCharacterSet {
			names, err := e.GetStrings()
			if err != nil {
				return
			}
			cs, err := dicomio.ParseSpecificCharacterSet(names, options.CharacterSetFix)
			if err != nil {
				r.d.SetError(err)
				return
			}
			r.d.SetCodingSystem(cs)
		}
	}

	for !stopped {
		tok, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ds, err
		}
		switch tok.Kind {
		case TokenElementHeader:
			if len(stack) == 0 && options.StopAtTag != nil && !tok.Tag.Less(*options.StopAtTag) {
				stopped = true
				continue
			}
			if len(stack) == 0 && options.DropPixelData && tok.Tag == dicomtag.TagPixelData {
				stopped = true
				// Still consume the (empty) value token the Reader emits
				// for a dropped PixelData element before stopping.
				if _, err := r.Next(); err != nil && err != io.EOF {
					return ds, err
				}
				continue
			}
			cur = &Element{Tag: tok.Tag, VR: tok.VR, UndefinedLength: tok.UndefinedLength}
		case TokenPrimitiveValue:
			if cur == nil {
				// An encapsulated pixel fragment's payload follows its
				// ItemStart, so it belongs to the Item on top of the stack.
				if tok.Tag == dicomtag.TagItem && len(stack) > 0 && stack[len(stack)-1].Tag == dicomtag.TagItem {
					stack[len(stack)-1].Value = tok.Values
				}
				continue
			}
			cur.Value = tok.Values
			attach(cur)
			cur = nil
		case TokenSequenceStart, TokenItemStart:
			if cur == nil {
				cur = &Element{Tag: tok.Tag, VR: tok.VR, UndefinedLength: tok.UndefinedLength}
			}
			attach(cur)
			stack = append(stack, cur)
			cur = nil
		case TokenSequenceEnd, TokenItemEnd:
			if len(stack) > 0 {
				popped := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if tok.Kind == TokenSequenceEnd && popped.Tag == dicomtag.TagPixelData {
					seq, err := foldPixelSequence(popped)
					if err != nil {
						r.d.SetError(err)
						continue
					}
					popped.Value = []interface{}{seq}
				}
			}
		}
	}
	if r.d.Error() != nil {
		return ds, r.d.Error()
	}
	return ds, nil
}

// foldPixelSequence converts an encapsulated PixelData element's Item
// children (each holding one raw fragment payload, the first being the
// Basic Offset Table) into a *pixel.Sequence, matching the Go type
// GetPixelSequence and the writer expect for VR=PixelData.
func foldPixelSequence(e *Element) (*pixel.Sequence, error) {
	items := make([][]byte, 0, len(e.Value))
	for _, v := range e.Value {
		item, ok := v.(*Element)
		if !ok || len(item.Value) != 1 {
			return nil, dicomio.ErrMalformedValue
		}
		data, ok := item.Value[0].([]byte)
		if !ok {
			return nil, dicomio.ErrMalformedValue
		}
		items = append(items, data)
	}
	return pixel.FromItems(items)
}
