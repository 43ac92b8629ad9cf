package dicom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
)

// String returns a string representation of the Element
func (e *Element) String() string {
	// Format: [Tag] [VR] (Name) ... : Value
	tagName := e.Tag.LookupName()
	if tagName != "" {
		tagName = " " + tagName
	}

	valStr := ""
	switch v := e.Value.(type) {
	case []byte:
		if e.Tag == tag.PixelData {
			valStr = fmt.Sprintf("Pixel Data (%d bytes)", len(v))
		} else if len(v) > 20 {
			valStr = fmt.Sprintf("Binary Data (%d bytes)", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	case []uint16:
		if len(v) > 10 {
			valStr = fmt.Sprintf("Array of %d params", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	default:
		valStr = fmt.Sprintf("%v", v)
	}

	return fmt.Sprintf("[%s] %s%s: %s", e.Tag, e.VR, tagName, valStr)
}

// MarshalJSON returns a JSON representation of the Element
func (e *Element) MarshalJSON() ([]byte, error) {
	value := e.Value
	if b, ok := value.([]byte); ok && len(b) > 20 {
		// keep pixel payloads out of dumps
		value = fmt.Sprintf("<%d bytes>", len(b))
	}
	return json.Marshal(&struct {
		Tag   string      `json:"tag"`
		Name  string      `json:"name,omitempty"`
		VR    string      `json:"vr"`
		Value interface{} `json:"value"`
	}{
		Tag:   e.Tag.String(),
		Name:  e.Tag.LookupName(),
		VR:    e.VR,
		Value: value,
	})
}

// String returns a string representation of the Dataset
func (ds *Dataset) String() string {
	if ds == nil {
		return "<nil>"
	}
	var b strings.Builder
	for _, elem := range ds.Sorted(nil) {
		b.WriteString(elem.String())
		b.WriteString("\n")
	}
	return b.String()
}

// MarshalJSON returns a JSON representation of the Dataset
// It returns a sorted array of Elements instead of a Map
func (ds *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(ds.Sorted(nil))
}
