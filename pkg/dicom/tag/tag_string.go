package tag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// String returns a string representation of the Tag (GGGG,EEEE)
func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}

// MarshalJSON returns a JSON representation of the Tag
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Parse accepts "(GGGG,EEEE)", "GGGG,EEEE" or a dictionary keyword such as "PatientName"
func Parse(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	for t, e := range dictionary {
		if strings.EqualFold(e.Name, s) {
			return t, nil
		}
	}
	var g, e uint16
	trimmed := strings.Trim(s, "()")
	if _, err := fmt.Sscanf(trimmed, "%4x,%4x", &g, &e); err != nil {
		return Tag{}, fmt.Errorf("invalid tag %q: %w", s, err)
	}
	return Tag{Group: g, Element: e}, nil
}
