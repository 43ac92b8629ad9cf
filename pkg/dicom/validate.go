package dicom

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
	"github.com/jpfielding/img2pacs/pkg/dicom/vr"
)

// AttributeType represents DICOM attribute type requirements
type AttributeType int

const (
	// Type1 - Required, must have value
	Type1 AttributeType = 1
	// Type1C - Conditionally required, must have value if present
	Type1C AttributeType = 2
	// Type2 - Required, may be empty
	Type2 AttributeType = 3
	// Type2C - Conditionally required, may be empty if present
	Type2C AttributeType = 4
	// Type3 - Optional
	Type3 AttributeType = 5
	// ValueConstraint - present value violates its VR
	ValueConstraint AttributeType = 6
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Tag        tag.Tag
	Type       AttributeType
	Message    string
	IsCritical bool // Type 1 and 1C violations are critical
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("(%04X,%04X) %s: %s", e.Tag.Group, e.Tag.Element, e.typeName(), e.Message)
}

func (e ValidationError) typeName() string {
	switch e.Type {
	case Type1:
		return "Type 1"
	case Type1C:
		return "Type 1C"
	case Type2:
		return "Type 2"
	case Type2C:
		return "Type 2C"
	case Type3:
		return "Type 3"
	case ValueConstraint:
		return "Value"
	default:
		return "Unknown"
	}
}

// ValidationResult contains all validation errors for a dataset
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no critical errors
func (r ValidationResult) IsValid() bool {
	for _, err := range r.Errors {
		if err.IsCritical {
			return false
		}
	}
	return true
}

// HasErrors returns true if there are any errors
func (r ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err joins the critical errors, or returns nil when the dataset is valid
func (r ValidationResult) Err() error {
	var errs []error
	for _, err := range r.Errors {
		if err.IsCritical {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IODRequirement defines a required attribute for an IOD
type IODRequirement struct {
	Tag       tag.Tag
	Type      AttributeType
	Condition func(*Dataset) bool // For Type 1C/2C, returns true if attribute is required
}

// ValidateDataset validates a dataset against a set of requirements
func ValidateDataset(ds *Dataset, requirements []IODRequirement) ValidationResult {
	result := ValidationResult{}

	for _, req := range requirements {
		elem, exists := ds.FindElement(req.Tag.Group, req.Tag.Element)

		switch req.Type {
		case Type1:
			if !exists {
				result.Errors = append(result.Errors, ValidationError{
					Tag:        req.Tag,
					Type:       Type1,
					Message:    "Required attribute missing",
					IsCritical: true,
				})
			} else if isEmpty(elem) {
				result.Errors = append(result.Errors, ValidationError{
					Tag:        req.Tag,
					Type:       Type1,
					Message:    "Required attribute is empty",
					IsCritical: true,
				})
			}

		case Type1C:
			if req.Condition != nil && req.Condition(ds) {
				if !exists {
					result.Errors = append(result.Errors, ValidationError{
						Tag:        req.Tag,
						Type:       Type1C,
						Message:    "Conditionally required attribute missing",
						IsCritical: true,
					})
				} else if isEmpty(elem) {
					result.Errors = append(result.Errors, ValidationError{
						Tag:        req.Tag,
						Type:       Type1C,
						Message:    "Conditionally required attribute is empty",
						IsCritical: true,
					})
				}
			}

		case Type2:
			if !exists {
				result.Warnings = append(result.Warnings, ValidationError{
					Tag:        req.Tag,
					Type:       Type2,
					Message:    "Required attribute missing (may be empty)",
					IsCritical: false,
				})
			}

		case Type2C:
			if req.Condition != nil && req.Condition(ds) && !exists {
				result.Warnings = append(result.Warnings, ValidationError{
					Tag:        req.Tag,
					Type:       Type2C,
					Message:    "Conditionally required attribute missing (may be empty)",
					IsCritical: false,
				})
			}

		case Type3:
			// Optional - no validation needed
		}
	}

	return result
}

// isEmpty checks if an element has no value
func isEmpty(elem *Element) bool {
	if elem == nil {
		return true
	}
	if elem.Value == nil {
		return true
	}
	switch v := elem.Value.(type) {
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	case []uint16:
		return len(v) == 0
	default:
		return false
	}
}

// Common IOD Requirements

// PatientModuleRequirements defines required attributes for Patient Module
var PatientModuleRequirements = []IODRequirement{
	{Tag: tag.PatientName, Type: Type2},
	{Tag: tag.PatientID, Type: Type2},
}

// GeneralStudyModuleRequirements defines required attributes for General Study Module
var GeneralStudyModuleRequirements = []IODRequirement{
	{Tag: tag.StudyInstanceUID, Type: Type1},
	{Tag: tag.StudyDate, Type: Type2},
	{Tag: tag.StudyTime, Type: Type2},
}

// GeneralSeriesModuleRequirements defines required attributes for General Series Module
var GeneralSeriesModuleRequirements = []IODRequirement{
	{Tag: tag.Modality, Type: Type1},
	{Tag: tag.SeriesInstanceUID, Type: Type1},
}

// ImagePixelModuleRequirements defines required attributes for Image Pixel Module
var ImagePixelModuleRequirements = []IODRequirement{
	{Tag: tag.SamplesPerPixel, Type: Type1},
	{Tag: tag.PhotometricInterpretation, Type: Type1},
	{Tag: tag.Rows, Type: Type1},
	{Tag: tag.Columns, Type: Type1},
	{Tag: tag.BitsAllocated, Type: Type1},
	{Tag: tag.BitsStored, Type: Type1},
	{Tag: tag.HighBit, Type: Type1},
	{Tag: tag.PixelRepresentation, Type: Type1},
	{Tag: tag.PixelData, Type: Type1},
}

// SOPCommonModuleRequirements defines required attributes for SOP Common Module
var SOPCommonModuleRequirements = []IODRequirement{
	{Tag: tag.SOPClassUID, Type: Type1},
	{Tag: tag.SOPInstanceUID, Type: Type1},
}

// FileMetaRequirements defines required attributes for the File Meta group
var FileMetaRequirements = []IODRequirement{
	{Tag: tag.MediaStorageSOPClassUID, Type: Type1},
	{Tag: tag.MediaStorageSOPInstanceUID, Type: Type1},
	{Tag: tag.TransferSyntaxUID, Type: Type1},
	{Tag: tag.ImplementationClassUID, Type: Type1},
}

// SCEquipmentModuleRequirements defines required attributes for SC Equipment Module
var SCEquipmentModuleRequirements = []IODRequirement{
	{Tag: tag.ConversionType, Type: Type1},
}

// SecondaryCaptureRequirements combines all requirements for the SC Image IOD
var SecondaryCaptureRequirements = concatRequirements(
	FileMetaRequirements,
	PatientModuleRequirements,
	GeneralStudyModuleRequirements,
	GeneralSeriesModuleRequirements,
	SCEquipmentModuleRequirements,
	ImagePixelModuleRequirements,
	SOPCommonModuleRequirements,
	[]IODRequirement{
		{Tag: tag.StudyID, Type: Type2},
		{Tag: tag.AccessionNumber, Type: Type2},
		{Tag: tag.ReferringPhysicianName, Type: Type2},
		{Tag: tag.InstanceNumber, Type: Type2},
	},
)

func concatRequirements(groups ...[]IODRequirement) []IODRequirement {
	var all []IODRequirement
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

// ValidateValues checks every string value against its VR: the length limit
// and, for text VRs, that it is representable in ISO_IR 100
func ValidateValues(ds *Dataset) []ValidationError {
	var errs []ValidationError
	for _, elem := range ds.Sorted(nil) {
		s, ok := elem.GetString()
		if !ok {
			continue
		}
		v := vr.VR(elem.VR)
		if max := v.MaxLength(); max > 0 && utf8.RuneCountInString(s) > max {
			errs = append(errs, ValidationError{
				Tag:        elem.Tag,
				Type:       ValueConstraint,
				Message:    fmt.Sprintf("%s value exceeds %d characters", v, max),
				IsCritical: true,
			})
		}
		if v.IsText() {
			if _, err := encodeText(s); err != nil {
				errs = append(errs, ValidationError{
					Tag:        elem.Tag,
					Type:       ValueConstraint,
					Message:    err.Error(),
					IsCritical: true,
				})
			}
		}
	}
	return errs
}

// ValidateSecondaryCapture validates a Secondary Capture dataset: attribute
// presence, value constraints and the SOP identity agreement between File
// Meta and body
func ValidateSecondaryCapture(ds *Dataset) ValidationResult {
	result := ValidateDataset(ds, SecondaryCaptureRequirements)
	result.Errors = append(result.Errors, ValidateValues(ds)...)

	if ds.GetString(tag.SOPClassUID) != ds.GetString(tag.MediaStorageSOPClassUID) {
		result.Errors = append(result.Errors, ValidationError{
			Tag:        tag.SOPClassUID,
			Type:       Type1,
			Message:    "SOP Class UID does not match Media Storage SOP Class UID",
			IsCritical: true,
		})
	}
	if ds.GetString(tag.SOPInstanceUID) != ds.GetString(tag.MediaStorageSOPInstanceUID) {
		result.Errors = append(result.Errors, ValidationError{
			Tag:        tag.SOPInstanceUID,
			Type:       Type1,
			Message:    "SOP Instance UID does not match Media Storage SOP Instance UID",
			IsCritical: true,
		})
	}
	if uid := ds.GetString(tag.SOPClassUID); uid != "" && uid != SecondaryCaptureImageStorageUID {
		result.Errors = append(result.Errors, ValidationError{
			Tag:        tag.SOPClassUID,
			Type:       Type1,
			Message:    fmt.Sprintf("unexpected SOP Class UID %s", uid),
			IsCritical: true,
		})
	}
	return result
}
