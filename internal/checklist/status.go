package checklist

import "strings"

// Status is the outcome of a verification item.
type Status string

const (
	StatusPass    Status = "Pass"
	StatusFail    Status = "Fail"
	StatusNA      Status = "NA"
	StatusOther   Status = "Other"
	StatusUnknown Status = "Unknown"
)

// ParseStatus maps free text onto a Status, case-insensitively. Both "na"
// and "n/a" map to NA. Unrecognized text maps to Unknown; callers that need
// strict validation check for that explicitly.
func ParseStatus(value string) Status {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pass":
		return StatusPass
	case "fail":
		return StatusFail
	case "na", "n/a":
		return StatusNA
	case "other":
		return StatusOther
	default:
		return StatusUnknown
	}
}

// String returns the canonical spelling stored in the database and emitted
// in markdown.
func (s Status) String() string {
	switch s {
	case StatusPass, StatusFail, StatusNA, StatusOther:
		return string(s)
	default:
		return string(StatusUnknown)
	}
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusNA, StatusOther, StatusUnknown:
		return true
	default:
		return false
	}
}
