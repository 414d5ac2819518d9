package dicomio

import (
	"strings"

	"github.com/tvbird-dicom/dicomcore/dicomlog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// CodingSystem defines how a []byte is translated into a utf8 string.
type CodingSystem struct {
	// VR="PN" is the only place where all three decoders are potentially
	// used.  For every other VR type, only the Ideographic decoder is used.
	// See PS3.5 6.1, 6.2.
	Alphabetic  *encoding.Decoder
	Ideographic *encoding.Decoder
	Phonetic    *encoding.Decoder
}

// CodingSystemType defines where the coding system is used. This
// distinction matters for PN component groups (alphabetic / ideographic /
// phonetic), and is otherwise unused.
type CodingSystemType int

const (
	AlphabeticCodingSystem CodingSystemType = iota
	IdeographicCodingSystem
	PhoneticCodingSystem
)

// htmlEncodingNames maps a DICOM SpecificCharacterSet defined term (PS3.5
// Annex D) to a golang.org/x/text/encoding/htmlindex name. "" means 7-bit
// ASCII (the default repertoire).
var htmlEncodingNames = map[string]string{
	"":                "",
	"ISO 2022 IR 6":   "iso-8859-1",
	"ISO_IR 13":       "shift_jis",
	"ISO 2022 IR 13":  "shift_jis",
	"ISO_IR 100":      "iso-8859-1",
	"ISO 2022 IR 100": "iso-8859-1",
	"ISO_IR 101":      "iso-8859-2",
	"ISO 2022 IR 101": "iso-8859-2",
	"ISO_IR 109":      "iso-8859-3",
	"ISO 2022 IR 109": "iso-8859-3",
	"ISO_IR 110":      "iso-8859-4",
	"ISO 2022 IR 110": "iso-8859-4",
	"ISO_IR 126":      "iso-ir-126",
	"ISO 2022 IR 126": "iso-ir-126",
	"ISO_IR 127":      "iso-ir-127",
	"ISO 2022 IR 127": "iso-ir-127",
	"ISO_IR 138":      "iso-ir-138",
	"ISO 2022 IR 138": "iso-ir-138",
	"ISO_IR 144":      "iso-8859-5",
	"ISO 2022 IR 144": "iso-8859-5",
	"ISO_IR 148":      "iso-ir-148",
	"ISO 2022 IR 148": "iso-ir-148",
	"ISO 2022 IR 149": "euc-kr",
	"ISO 2022 IR 159": "iso-2022-jp",
	"ISO_IR 166":      "iso-ir-166",
	"ISO 2022 IR 166": "iso-ir-166",
	"ISO 2022 IR 87":  "iso-2022-jp",
	"ISO_IR 192":      "utf-8",
	"GB18030":         "gb18030",
	"GBK":             "gbk",
	"CP1250HACK":      "windows-1250",
}

// getCustomDecoder returns a decoder for encodings golang.org/x/text's
// htmlindex doesn't carry under the name DICOM uses, but charmap does.
func getCustomDecoder(encodingName string) *encoding.Decoder {
	switch encodingName {
	case "windows-1250":
		return charmap.Windows1250.NewDecoder()
	default:
		return nil
	}
}

// ParseSpecificCharacterSet converts the value(s) of a SpecificCharacterSet
// element, such as {"ISO 2022 IR 100"}, into a CodingSystem. It returns the
// zero CodingSystem (all nil decoders, meaning 7-bit ASCII) for an empty
// name list. Cf. PS3.5 6.1.2.3, PS3.2 D.6.2.
func ParseSpecificCharacterSet(encodingNames []string, cp1250Fix bool) (CodingSystem, error) {
	var decoders []*encoding.Decoder
	for _, name := range encodingNames {
		if cp1250Fix && name == "ISO_IR 100" {
			name = "CP1250HACK"
		}
		normalizedName := strings.Join(strings.Fields(strings.TrimSpace(name)), " ")

		htmlName, ok := htmlEncodingNames[normalizedName]
		if !ok {
			dicomlog.Vprintf(-1, "dicomio.ParseSpecificCharacterSet: unknown character set %q, falling back to UTF-8", normalizedName)
			htmlName = "utf-8"
		}

		var c *encoding.Decoder
		if htmlName != "" {
			if custom := getCustomDecoder(htmlName); custom != nil {
				c = custom
			} else {
				d, err := htmlindex.Get(htmlName)
				if err != nil {
					return CodingSystem{}, err
				}
				c = d.NewDecoder()
			}
		}
		decoders = append(decoders, c)
	}

	switch len(decoders) {
	case 0:
		return CodingSystem{nil, nil, nil}, nil
	case 1:
		return CodingSystem{decoders[0], decoders[0], decoders[0]}, nil
	case 2:
		return CodingSystem{decoders[0], decoders[1], decoders[1]}, nil
	default:
		return CodingSystem{decoders[0], decoders[1], decoders[2]}, nil
	}
}
