package archive

import (
	"bufio"
	"strings"
)

// Patient name attribute as it appears in find output
const (
	PatientNameTag     = "(0010,0010)"
	PatientNameKeyword = "PatientName"
)

// Names shown in place of a patient name when a lookup does not resolve
const (
	NotFoundName    = "Not Found"
	QueryFailedName = "Error Fetching"
	ErrorNamePrefix = "Error: "
)

// LookupStatus tags a LookupOutcome
type LookupStatus int

const (
	// Empty means no lookup was made because the identifier was empty
	Empty LookupStatus = iota
	Resolved
	NotFound
	QueryFailed
)

func (s LookupStatus) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NotFound:
		return "not_found"
	case QueryFailed:
		return "query_failed"
	default:
		return "empty"
	}
}

// LookupOutcome is the result of resolving a patient identifier
type LookupOutcome struct {
	Status LookupStatus
	Name   string // display name, set when Resolved
	Detail string // tool diagnostic, set when QueryFailed
	Err    error  // set when the tool could not be run at all
}

// DisplayName is what a form shows in the patient name field
func (o LookupOutcome) DisplayName() string {
	switch o.Status {
	case Resolved:
		return o.Name
	case NotFound:
		return NotFoundName
	case QueryFailed:
		if o.Err != nil {
			return ErrorNamePrefix + o.Err.Error()
		}
		return QueryFailedName
	default:
		return ""
	}
}

// IsPlaceholderName reports whether name is one of the values DisplayName
// produces for an unresolved lookup
func IsPlaceholderName(name string) bool {
	return name == NotFoundName || name == QueryFailedName || strings.HasPrefix(name, ErrorNamePrefix)
}

// ParseFindOutput interprets find tool output. A non-zero exit is a failed
// query whose detail is stderr, or stdout when stderr is empty. Otherwise
// the first line carrying both the PatientName tag and keyword decides: the
// text between its first '[' and the next ']' has its '^' separators
// replaced by single spaces. A missing line or blank value is NotFound.
func ParseFindOutput(stdout, stderr string, exitStatus int) LookupOutcome {
	if exitStatus != 0 {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = strings.TrimSpace(stdout)
		}
		return LookupOutcome{Status: QueryFailed, Detail: detail}
	}

	sc := bufio.NewScanner(strings.NewReader(stdout))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, PatientNameTag) || !strings.Contains(line, PatientNameKeyword) {
			continue
		}
		// only the first matching line counts
		name := formatPersonName(bracketed(line))
		if name == "" {
			return LookupOutcome{Status: NotFound}
		}
		return LookupOutcome{Status: Resolved, Name: name}
	}
	return LookupOutcome{Status: NotFound}
}

// bracketed returns the text between the first '[' and the first ']' after it
func bracketed(line string) string {
	_, rest, ok := strings.Cut(line, "[")
	if !ok {
		return ""
	}
	value, _, ok := strings.Cut(rest, "]")
	if !ok {
		return ""
	}
	return value
}

// formatPersonName turns DOE^JOHN into "DOE JOHN"
func formatPersonName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(strings.Join(strings.Split(raw, "^"), " "))
}
