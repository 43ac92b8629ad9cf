// Package convert turns a grayscale image plus patient and study identifiers
// into a Secondary Capture object, persists it and sends it to the archive
package convert

import (
	"errors"
	"fmt"
)

// Error classes surfaced in Report.Err
var (
	ErrValidation   = errors.New("validation failed")
	ErrBusy         = errors.New("a conversion is already in progress")
	ErrBuild        = errors.New("building object failed")
	ErrPersist      = errors.New("persisting object failed")
	ErrTransmission = errors.New("transmission failed")
)

// Status messages shown to the user
const (
	MissingFieldsMessage  = "Please fill in all fields."
	UnresolvedNameMessage = "Patient name is not resolved, check the Patient ID."
	BusyMessage           = "A conversion is already in progress."
	ErrorMessagePrefix    = "Error: "
)

// PatientIdentity is the patient the object is filed under
type PatientIdentity struct {
	PatientID   string
	PatientName string
}

// StudyContext carries the user-supplied study identifiers
type StudyContext struct {
	StudyDescription string
	AccessionNumber  string
	StudyID          string
}

// Request holds the six form inputs of one conversion
type Request struct {
	ImagePath string
	PatientIdentity
	StudyContext
}

// MissingFields lists the names of empty required inputs
func (r Request) MissingFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"image_path", r.ImagePath},
		{"patient_name", r.PatientName},
		{"patient_id", r.PatientID},
		{"study_description", r.StudyDescription},
		{"accession_number", r.AccessionNumber},
		{"study_id", r.StudyID},
	}
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// State of the conversion state machine
type State int

const (
	Idle State = iota
	Validating
	BuildingObject
	Persisting
	Transmitting
	Reporting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Validating:
		return "Validating"
	case BuildingObject:
		return "BuildingObject"
	case Persisting:
		return "Persisting"
	case Transmitting:
		return "Transmitting"
	case Reporting:
		return "Reporting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Report is the single user-visible result of a conversion
type Report struct {
	State      State // Reporting once the machine ran, Idle when refused as busy
	Stage      State // last working state entered before Reporting
	OK         bool
	Message    string
	Err        error
	ObjectPath string
}
