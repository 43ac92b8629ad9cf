// Package vr defines DICOM Value Representations
package vr

// VR represents a DICOM Value Representation
type VR string

// Standard DICOM Value Representations
const (
	AE VR = "AE" // Application Entity (16 bytes max)
	AS VR = "AS" // Age String (4 bytes fixed)
	AT VR = "AT" // Attribute Tag (4 bytes fixed)
	CS VR = "CS" // Code String (16 bytes max)
	DA VR = "DA" // Date (8 bytes fixed)
	DS VR = "DS" // Decimal String (16 bytes max)
	DT VR = "DT" // DateTime (26 bytes max)
	FL VR = "FL" // Floating Point Single (4 bytes fixed)
	FD VR = "FD" // Floating Point Double (8 bytes fixed)
	IS VR = "IS" // Integer String (12 bytes max)
	LO VR = "LO" // Long String (64 bytes max)
	LT VR = "LT" // Long Text (10240 bytes max)
	OB VR = "OB" // Other Byte String
	OD VR = "OD" // Other Double String
	OF VR = "OF" // Other Float String
	OL VR = "OL" // Other Long
	OW VR = "OW" // Other Word String
	PN VR = "PN" // Person Name (64 bytes max per component)
	SH VR = "SH" // Short String (16 bytes max)
	SL VR = "SL" // Signed Long (4 bytes fixed)
	SQ VR = "SQ" // Sequence of Items
	SS VR = "SS" // Signed Short (2 bytes fixed)
	ST VR = "ST" // Short Text (1024 bytes max)
	TM VR = "TM" // Time (16 bytes max)
	UC VR = "UC" // Unlimited Characters
	UI VR = "UI" // Unique Identifier (64 bytes max)
	UL VR = "UL" // Unsigned Long (4 bytes fixed)
	UN VR = "UN" // Unknown
	UR VR = "UR" // Universal Resource Identifier
	US VR = "US" // Unsigned Short (2 bytes fixed)
	UT VR = "UT" // Unlimited Text
)

// HasLongLength returns true if the VR uses 2 reserved bytes and a 4-byte
// length in explicit VR encodings
func (v VR) HasLongLength() bool {
	switch v {
	case OB, OD, OF, OL, OW, SQ, UC, UN, UR, UT:
		return true
	default:
		return false
	}
}

// IsString returns true if this VR contains string data
func (v VR) IsString() bool {
	switch v {
	case AE, AS, CS, DA, DS, DT, IS, LO, LT, PN, SH, ST, TM, UC, UI, UR, UT:
		return true
	default:
		return false
	}
}

// IsText returns true for VRs whose characters follow the Specific
// Character Set; the remaining string VRs are restricted to ASCII
func (v VR) IsText() bool {
	switch v {
	case LO, LT, PN, SH, ST, UC, UT:
		return true
	default:
		return false
	}
}

// PadByte is the byte appended to odd-length values
func (v VR) PadByte() byte {
	switch v {
	case UI, OB, UN:
		return 0x00
	}
	if v.IsString() {
		return ' '
	}
	return 0x00
}

// MaxLength returns the maximum value length in bytes for bounded
// string VRs, or 0 when the VR is unbounded or binary
func (v VR) MaxLength() int {
	switch v {
	case AE, CS, SH:
		return 16
	case DA:
		return 8
	case TM:
		return 16
	case IS:
		return 12
	case LO, UI:
		return 64
	case PN:
		return 64 * 5
	case ST:
		return 1024
	case LT:
		return 10240
	default:
		return 0
	}
}
