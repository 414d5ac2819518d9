package dicomtag

// Structural tags used by the Dataset Tokenizer and Element Codec to
// recognize sequence/item delimiters (PS3.5 7.5).
var (
	TagItem                     = Tag{0xFFFE, 0xE000}
	TagItemDelimitationItem     = Tag{0xFFFE, 0xE00D}
	TagSequenceDelimitationItem = Tag{0xFFFE, 0xE0DD}
)

// File Meta Information tags (always group 0x0002, PS3.10 7.1).
var (
	TagFileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	TagFileMetaInformationVersion     = Tag{0x0002, 0x0001}
	TagMediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	TagMediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TagTransferSyntaxUID              = Tag{0x0002, 0x0010}
	TagImplementationClassUID         = Tag{0x0002, 0x0012}
	TagImplementationVersionName      = Tag{0x0002, 0x0013}
	TagSourceApplicationEntityTitle   = Tag{0x0002, 0x0016}
)

// Commonly used dataset-body tags.
var (
	TagSpecificCharacterSet    = Tag{0x0008, 0x0005}
	TagSOPClassUID             = Tag{0x0008, 0x0016}
	TagSOPInstanceUID          = Tag{0x0008, 0x0018}
	TagStudyDate               = Tag{0x0008, 0x0020}
	TagSeriesDate              = Tag{0x0008, 0x0021}
	TagModality                = Tag{0x0008, 0x0060}
	TagManufacturer            = Tag{0x0008, 0x0070}
	TagPatientName             = Tag{0x0010, 0x0010}
	TagPatientID               = Tag{0x0010, 0x0020}
	TagPatientBirthDate        = Tag{0x0010, 0x0030}
	TagPatientSex              = Tag{0x0010, 0x0040}
	TagStudyInstanceUID        = Tag{0x0020, 0x000D}
	TagSeriesInstanceUID       = Tag{0x0020, 0x000E}
	TagSamplesPerPixel         = Tag{0x0028, 0x0002}
	TagPhotometricInterpretation = Tag{0x0028, 0x0004}
	TagRows                    = Tag{0x0028, 0x0010}
	TagColumns                 = Tag{0x0028, 0x0011}
	TagBitsAllocated           = Tag{0x0028, 0x0100}
	TagBitsStored              = Tag{0x0028, 0x0101}
	TagPixelData               = Tag{0x7FE0, 0x0010}
)

var dictionary = map[Tag]TagInfo{
	TagFileMetaInformationGroupLength: {TagFileMetaInformationGroupLength, "UL", "FileMetaInformationGroupLength", "1"},
	TagFileMetaInformationVersion:     {TagFileMetaInformationVersion, "OB", "FileMetaInformationVersion", "1"},
	TagMediaStorageSOPClassUID:        {TagMediaStorageSOPClassUID, "UI", "MediaStorageSOPClassUID", "1"},
	TagMediaStorageSOPInstanceUID:     {TagMediaStorageSOPInstanceUID, "UI", "MediaStorageSOPInstanceUID", "1"},
	TagTransferSyntaxUID:              {TagTransferSyntaxUID, "UI", "TransferSyntaxUID", "1"},
	TagImplementationClassUID:         {TagImplementationClassUID, "UI", "ImplementationClassUID", "1"},
	TagImplementationVersionName:      {TagImplementationVersionName, "SH", "ImplementationVersionName", "1"},
	TagSourceApplicationEntityTitle:   {TagSourceApplicationEntityTitle, "AE", "SourceApplicationEntityTitle", "1"},

	TagSpecificCharacterSet:      {TagSpecificCharacterSet, "CS", "SpecificCharacterSet", "1-n"},
	TagSOPClassUID:               {TagSOPClassUID, "UI", "SOPClassUID", "1"},
	TagSOPInstanceUID:            {TagSOPInstanceUID, "UI", "SOPInstanceUID", "1"},
	TagStudyDate:                 {TagStudyDate, "DA", "StudyDate", "1"},
	TagSeriesDate:                {TagSeriesDate, "DA", "SeriesDate", "1"},
	TagModality:                  {TagModality, "CS", "Modality", "1"},
	TagManufacturer:              {TagManufacturer, "LO", "Manufacturer", "1"},
	TagPatientName:               {TagPatientName, "PN", "PatientName", "1"},
	TagPatientID:                 {TagPatientID, "LO", "PatientID", "1"},
	TagPatientBirthDate:          {TagPatientBirthDate, "DA", "PatientBirthDate", "1"},
	TagPatientSex:                {TagPatientSex, "CS", "PatientSex", "1"},
	TagStudyInstanceUID:          {TagStudyInstanceUID, "UI", "StudyInstanceUID", "1"},
	TagSeriesInstanceUID:         {TagSeriesInstanceUID, "UI", "SeriesInstanceUID", "1"},
	TagSamplesPerPixel:           {TagSamplesPerPixel, "US", "SamplesPerPixel", "1"},
	TagPhotometricInterpretation: {TagPhotometricInterpretation, "CS", "PhotometricInterpretation", "1"},
	TagRows:                      {TagRows, "US", "Rows", "1"},
	TagColumns:                   {TagColumns, "US", "Columns", "1"},
	TagBitsAllocated:             {TagBitsAllocated, "US", "BitsAllocated", "1"},
	TagBitsStored:                {TagBitsStored, "US", "BitsStored", "1"},
	TagPixelData:                 {TagPixelData, "OW", "PixelData", "1"},
}

var byName = func() map[string]Tag {
	m := make(map[string]Tag, len(dictionary))
	for tag, entry := range dictionary {
		m[entry.Name] = tag
	}
	return m
}()
