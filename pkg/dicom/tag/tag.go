// Package tag defines the DICOM tags used by Secondary Capture objects
package tag

// Tag represents a DICOM tag with Group and Element
type Tag struct {
	Group   uint16
	Element uint16
}

// New creates a new Tag
func New(group, element uint16) Tag {
	return Tag{Group: group, Element: element}
}

// IsPrivate returns true if this is a private tag (odd group number)
func (t Tag) IsPrivate() bool {
	return t.Group%2 == 1
}

// IsFileMeta returns true if this tag is in the File Meta Information group
func (t Tag) IsFileMeta() bool {
	return t.Group == 0x0002
}

// Less orders tags by group then element, the order required on the wire
func (t Tag) Less(other Tag) bool {
	if t.Group != other.Group {
		return t.Group < other.Group
	}
	return t.Element < other.Element
}

// File Meta Information (Group 0002)
var (
	FileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	FileMetaInformationVersion     = Tag{0x0002, 0x0001}
	MediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TransferSyntaxUID              = Tag{0x0002, 0x0010}
	ImplementationClassUID         = Tag{0x0002, 0x0012}
	ImplementationVersionName      = Tag{0x0002, 0x0013}
	SourceApplicationEntityTitle   = Tag{0x0002, 0x0016}
)

// Patient Module (Group 0010)
var (
	PatientName      = Tag{0x0010, 0x0010}
	PatientID        = Tag{0x0010, 0x0020}
	PatientBirthDate = Tag{0x0010, 0x0030}
	PatientSex       = Tag{0x0010, 0x0040}
)

// General Study Module (Group 0008, 0020)
var (
	StudyDate              = Tag{0x0008, 0x0020}
	StudyTime              = Tag{0x0008, 0x0030}
	AccessionNumber        = Tag{0x0008, 0x0050}
	ReferringPhysicianName = Tag{0x0008, 0x0090}
	StudyDescription       = Tag{0x0008, 0x1030}
	StudyInstanceUID       = Tag{0x0020, 0x000D}
	StudyID                = Tag{0x0020, 0x0010}
)

// General Series Module
var (
	Modality          = Tag{0x0008, 0x0060}
	SeriesInstanceUID = Tag{0x0020, 0x000E}
	SeriesNumber      = Tag{0x0020, 0x0011}
	InstanceNumber    = Tag{0x0020, 0x0013}
)

// SC Equipment Module
var (
	ConversionType = Tag{0x0008, 0x0064} // CS - WSD for workstation-created images
)

// SOP Common Module
var (
	SpecificCharacterSet = Tag{0x0008, 0x0005}
	SOPClassUID          = Tag{0x0008, 0x0016}
	SOPInstanceUID       = Tag{0x0008, 0x0018}
)

// Image Pixel Module (Group 0028)
var (
	SamplesPerPixel           = Tag{0x0028, 0x0002}
	PhotometricInterpretation = Tag{0x0028, 0x0004}
	Rows                      = Tag{0x0028, 0x0010}
	Columns                   = Tag{0x0028, 0x0011}
	BitsAllocated             = Tag{0x0028, 0x0100}
	BitsStored                = Tag{0x0028, 0x0101}
	HighBit                   = Tag{0x0028, 0x0102}
	PixelRepresentation       = Tag{0x0028, 0x0103}
	PixelData                 = Tag{0x7FE0, 0x0010}
)

// Sequence delimiters
var (
	Item                     = Tag{0xFFFE, 0xE000}
	ItemDelimitationItem     = Tag{0xFFFE, 0xE00D}
	SequenceDelimitationItem = Tag{0xFFFE, 0xE0DD}
)

// dictionary maps known tags to their keyword and Value Representation.
// Implicit VR streams carry no VR on the wire, so the reader relies on it.
var dictionary = map[Tag]struct {
	Name string
	VR   string
}{
	FileMetaInformationGroupLength: {"FileMetaInformationGroupLength", "UL"},
	FileMetaInformationVersion:     {"FileMetaInformationVersion", "OB"},
	MediaStorageSOPClassUID:        {"MediaStorageSOPClassUID", "UI"},
	MediaStorageSOPInstanceUID:     {"MediaStorageSOPInstanceUID", "UI"},
	TransferSyntaxUID:              {"TransferSyntaxUID", "UI"},
	ImplementationClassUID:         {"ImplementationClassUID", "UI"},
	ImplementationVersionName:      {"ImplementationVersionName", "SH"},
	SourceApplicationEntityTitle:   {"SourceApplicationEntityTitle", "AE"},

	PatientName:      {"PatientName", "PN"},
	PatientID:        {"PatientID", "LO"},
	PatientBirthDate: {"PatientBirthDate", "DA"},
	PatientSex:       {"PatientSex", "CS"},

	StudyDate:              {"StudyDate", "DA"},
	StudyTime:              {"StudyTime", "TM"},
	AccessionNumber:        {"AccessionNumber", "SH"},
	ReferringPhysicianName: {"ReferringPhysicianName", "PN"},
	StudyDescription:       {"StudyDescription", "LO"},
	StudyInstanceUID:       {"StudyInstanceUID", "UI"},
	StudyID:                {"StudyID", "SH"},

	Modality:          {"Modality", "CS"},
	SeriesInstanceUID: {"SeriesInstanceUID", "UI"},
	SeriesNumber:      {"SeriesNumber", "IS"},
	InstanceNumber:    {"InstanceNumber", "IS"},
	ConversionType:    {"ConversionType", "CS"},

	SpecificCharacterSet: {"SpecificCharacterSet", "CS"},
	SOPClassUID:          {"SOPClassUID", "UI"},
	SOPInstanceUID:       {"SOPInstanceUID", "UI"},

	SamplesPerPixel:           {"SamplesPerPixel", "US"},
	PhotometricInterpretation: {"PhotometricInterpretation", "CS"},
	Rows:                      {"Rows", "US"},
	Columns:                   {"Columns", "US"},
	BitsAllocated:             {"BitsAllocated", "US"},
	BitsStored:                {"BitsStored", "US"},
	HighBit:                   {"HighBit", "US"},
	PixelRepresentation:       {"PixelRepresentation", "US"},
	PixelData:                 {"PixelData", "OW"},
}

// LookupName returns the keyword for a known tag, or "" if unknown
func (t Tag) LookupName() string {
	return dictionary[t].Name
}

// LookupVR returns the dictionary VR for a tag. Group length
// elements are always UL; anything unknown is UN.
func (t Tag) LookupVR() string {
	if e, ok := dictionary[t]; ok {
		return e.VR
	}
	if t.Element == 0x0000 {
		return "UL"
	}
	return "UN"
}
