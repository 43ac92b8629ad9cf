package dicom

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
)

// Dataset represents a complete DICOM dataset, File Meta group included
type Dataset struct {
	Elements map[Tag]*Element
}

// Element represents a single DICOM element
type Element struct {
	Tag   Tag
	VR    string      // Value Representation
	Value interface{} // Parsed value
}

// Tag alias to avoid duplication
type Tag = tag.Tag

// FindElement returns an element by tag
func (ds *Dataset) FindElement(group, element uint16) (*Element, bool) {
	elem, ok := ds.Elements[Tag{Group: group, Element: element}]
	return elem, ok
}

// Get returns an element by tag
func (ds *Dataset) Get(t Tag) (*Element, bool) {
	elem, ok := ds.Elements[t]
	return elem, ok
}

// GetString returns the trimmed string value of a tag, or "" when absent
func (ds *Dataset) GetString(t Tag) string {
	if elem, ok := ds.Elements[t]; ok {
		if s, ok := elem.GetString(); ok {
			return strings.TrimRight(s, " \x00")
		}
	}
	return ""
}

// GetInt returns the integer value of a tag, or 0 when absent
func (ds *Dataset) GetInt(t Tag) int {
	if elem, ok := ds.Elements[t]; ok {
		if v, ok := elem.GetInt(); ok {
			return v
		}
	}
	return 0
}

// Sorted returns the elements ordered by tag, optionally restricted to one group
func (ds *Dataset) Sorted(filter func(Tag) bool) []*Element {
	elements := make([]*Element, 0, len(ds.Elements))
	for t, elem := range ds.Elements {
		if filter == nil || filter(t) {
			elements = append(elements, elem)
		}
	}
	sort.Slice(elements, func(i, j int) bool {
		return elements[i].Tag.Less(elements[j].Tag)
	})
	return elements
}

// GetString returns a string value from an element
func (elem *Element) GetString() (string, bool) {
	if s, ok := elem.Value.(string); ok {
		return s, true
	}
	return "", false
}

// GetBytes returns a raw byte value from an element
func (elem *Element) GetBytes() ([]byte, bool) {
	if b, ok := elem.Value.([]byte); ok {
		return b, true
	}
	return nil, false
}

// GetInt returns an int value from an element
func (elem *Element) GetInt() (int, bool) {
	switch v := elem.Value.(type) {
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case int:
		return v, true
	case int32:
		return int(v), true
	case string:
		var i int
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &i); err == nil {
			return i, true
		}
	case []byte:
		if len(v) == 2 {
			return int(binary.LittleEndian.Uint16(v)), true
		}
		if len(v) == 4 {
			return int(binary.LittleEndian.Uint32(v)), true
		}
	}
	return 0, false
}
