package module

import "github.com/jpfielding/img2pacs/pkg/dicom/tag"

// SCEquipmentModule represents the SC Equipment Module (PS3.3 C.8.6.1)
type SCEquipmentModule struct {
	ConversionType string // WSD = workstation
}

func (m *SCEquipmentModule) ToTags() []IODElement {
	return []IODElement{
		{Tag: tag.ConversionType, Value: m.ConversionType},
	}
}
