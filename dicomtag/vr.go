package dicomtag

// VR identifies a DICOM Value Representation code (PS3.5 6.2).
type VR string

const (
	VR_AE VR = "AE"
	VR_AS VR = "AS"
	VR_AT VR = "AT"
	VR_CS VR = "CS"
	VR_DA VR = "DA"
	VR_DS VR = "DS"
	VR_DT VR = "DT"
	VR_FL VR = "FL"
	VR_FD VR = "FD"
	VR_IS VR = "IS"
	VR_LO VR = "LO"
	VR_LT VR = "LT"
	VR_OB VR = "OB"
	VR_OD VR = "OD"
	VR_OF VR = "OF"
	VR_OL VR = "OL"
	VR_OV VR = "OV"
	VR_OW VR = "OW"
	VR_PN VR = "PN"
	VR_SH VR = "SH"
	VR_SL VR = "SL"
	VR_SQ VR = "SQ"
	VR_SS VR = "SS"
	VR_ST VR = "ST"
	VR_TM VR = "TM"
	VR_UC VR = "UC"
	VR_UI VR = "UI"
	VR_UL VR = "UL"
	VR_UN VR = "UN"
	VR_UR VR = "UR"
	VR_US VR = "US"
	VR_UT VR = "UT"
)

// LongValueLengthVRs is the set of VRs that, under Explicit VR encoding,
// carry a 2-byte reserved field followed by a 4-byte value length instead
// of a 2-byte value length (PS3.5 7.1.2).
var LongValueLengthVRs = map[VR]bool{
	VR_OB: true,
	VR_OD: true,
	VR_OF: true,
	VR_OL: true,
	VR_OV: true,
	VR_OW: true,
	VR_SQ: true,
	VR_UN: true,
	VR_UC: true,
	VR_UR: true,
	VR_UT: true,
}

// ForbidsUndefinedLength is the set of VRs for which Explicit VR encoding
// never permits the undefined-length (0xFFFFFFFF) marker, even though they
// share the long value-length layout (PS3.5 7.1.2).
var ForbidsUndefinedLength = map[VR]bool{
	VR_UC: true,
	VR_UR: true,
	VR_UT: true,
}

// PadByte returns the byte used to pad a VR's value to an even length
// (PS3.5 6.4): most VRs pad with a space, binary VRs pad with a NUL.
func PadByte(vr VR) byte {
	switch vr {
	case VR_OB, VR_OW, VR_OF, VR_OD, VR_OL, VR_OV, VR_UN, VR_UI:
		return 0x00
	default:
		return 0x20
	}
}
