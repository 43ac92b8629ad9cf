package module

import "github.com/jpfielding/img2pacs/pkg/dicom/tag"

// PatientModule represents the Patient Module (PS3.3 C.7.1.1)
type PatientModule struct {
	PatientName      string
	PatientID        string
	PatientBirthDate string // Type 2, left empty when unknown
	PatientSex       string // M, F, O or empty
}

func (m *PatientModule) ToTags() []IODElement {
	return []IODElement{
		{Tag: tag.PatientName, Value: m.PatientName},
		{Tag: tag.PatientID, Value: m.PatientID},
		{Tag: tag.PatientBirthDate, Value: m.PatientBirthDate},
		{Tag: tag.PatientSex, Value: m.PatientSex},
	}
}
