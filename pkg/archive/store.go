package archive

// Status messages reported after a store attempt
const (
	SentMessage         = "DICOM sent successfully to PACS."
	FailedMessagePrefix = "Failed to send to PACS: "
)

// TransmissionOutcome is Sent, or Failed with the tool's diagnostic
type TransmissionOutcome struct {
	Sent   bool
	Detail string
}

// InterpretStore maps a store tool exit to an outcome. The store is atomic:
// exit 0 is Sent, anything else is Failed with stderr as the detail.
func InterpretStore(exitStatus int, stderr string) TransmissionOutcome {
	if exitStatus == 0 {
		return TransmissionOutcome{Sent: true}
	}
	return TransmissionOutcome{Detail: stderr}
}

// Message is the user-facing status line for the outcome
func (o TransmissionOutcome) Message() string {
	if o.Sent {
		return SentMessage
	}
	return FailedMessagePrefix + o.Detail
}
