package module

import (
	"time"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
)

// GeneralStudyModule represents the General Study Module (PS3.3 C.7.2.1)
type GeneralStudyModule struct {
	StudyInstanceUID       string
	StudyDate              Date
	StudyTime              Time
	StudyID                string
	AccessionNumber        string
	StudyDescription       string
	ReferringPhysicianName string
}

// NewGeneralStudyModule stamps the study with the given wall-clock time
func NewGeneralStudyModule(t time.Time) GeneralStudyModule {
	return GeneralStudyModule{
		StudyDate: NewDate(t),
		StudyTime: NewTime(t),
	}
}

func (m *GeneralStudyModule) ToTags() []IODElement {
	return []IODElement{
		{Tag: tag.StudyInstanceUID, Value: m.StudyInstanceUID},
		{Tag: tag.StudyDate, Value: m.StudyDate.String()},
		{Tag: tag.StudyTime, Value: m.StudyTime.String()},
		{Tag: tag.StudyID, Value: m.StudyID},
		{Tag: tag.AccessionNumber, Value: m.AccessionNumber},
		{Tag: tag.StudyDescription, Value: m.StudyDescription},
		{Tag: tag.ReferringPhysicianName, Value: m.ReferringPhysicianName},
	}
}
