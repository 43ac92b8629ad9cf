package dicom

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// SpecificCharacterSet declared by every object this package builds
const SpecificCharacterSet = "ISO_IR 100"

// encodeText converts a text VR value to ISO 8859-1, failing on runes the
// character set cannot carry
func encodeText(s string) ([]byte, error) {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%q is not representable in %s: %w", s, SpecificCharacterSet, err)
	}
	return b, nil
}

// decodeText converts ISO 8859-1 bytes to a Go string
func decodeText(b []byte) string {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
