package module

import (
	"strconv"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
)

// GeneralSeriesModule represents the General Series Module (PS3.3 C.7.3.1)
type GeneralSeriesModule struct {
	Modality          string
	SeriesInstanceUID string
	SeriesNumber      int
}

func (m *GeneralSeriesModule) ToTags() []IODElement {
	return []IODElement{
		{Tag: tag.Modality, Value: m.Modality},
		{Tag: tag.SeriesInstanceUID, Value: m.SeriesInstanceUID},
		{Tag: tag.SeriesNumber, Value: strconv.Itoa(m.SeriesNumber)},
	}
}
