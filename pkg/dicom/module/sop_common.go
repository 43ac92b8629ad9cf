package module

import "github.com/jpfielding/img2pacs/pkg/dicom/tag"

// SOPCommonModule represents the SOP Common Module (PS3.3 C.12.1)
type SOPCommonModule struct {
	SOPClassUID          string
	SOPInstanceUID       string
	SpecificCharacterSet string
}

func NewSOPCommonModule() SOPCommonModule {
	return SOPCommonModule{
		SpecificCharacterSet: "ISO_IR 100", // Latin 1
	}
}

func (m *SOPCommonModule) ToTags() []IODElement {
	return []IODElement{
		{Tag: tag.SOPClassUID, Value: m.SOPClassUID},
		{Tag: tag.SOPInstanceUID, Value: m.SOPInstanceUID},
		{Tag: tag.SpecificCharacterSet, Value: m.SpecificCharacterSet},
	}
}
