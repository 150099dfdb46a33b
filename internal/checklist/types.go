package checklist

import "time"

// Slug is one verification item, the checklist's unit of record.
//
// AddressID is derived from the five identity fields (checklist, section,
// procedure, action, spec) and is the primary key everywhere. The identity
// fields never change for an existing slug; only the outcome fields (Result,
// Status, Comment, Timestamp, Instructions) are mutable.
type Slug struct {
	AddressID string `json:"address_id"`

	Checklist string `json:"checklist"`
	Section   string `json:"section"`
	Procedure string `json:"procedure"`
	Action    string `json:"action"`
	Spec      string `json:"spec"`

	Result    string `json:"result"`
	Status    Status `json:"status"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"`

	Instructions string `json:"instructions"`

	// Relationships holds the slug's outgoing edges.
	Relationships []Edge `json:"relationships"`
}

// Edge is a directed, predicate-labeled link from one slug to another.
type Edge struct {
	Predicate string `json:"predicate"`
	Target    string `json:"target"`
}

// IncomingEdge is an edge viewed from its target: Source is the slug the
// edge originates from.
type IncomingEdge struct {
	Source    string `json:"source"`
	Predicate string `json:"predicate"`
}

// Graph holds both edge directions for one slug.
type Graph struct {
	Outgoing []Edge         `json:"outgoing"`
	Incoming []IncomingEdge `json:"incoming"`
}

// Update is a merge-patch against one slug's outcome fields. Nil pointers
// mean "leave unchanged"; a pointer to an empty string is a real update.
// A nil Timestamp means "stamp with the current UTC time".
type Update struct {
	AddressID string  `json:"address_id"`
	Result    *string `json:"result,omitempty"`
	Status    *Status `json:"status,omitempty"`
	Comment   *string `json:"comment,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"`
}

// TimestampLayout is the ISO-8601 UTC layout used for every timestamp the
// system writes.
const TimestampLayout = "2006-01-02T15:04:05Z"

// NowUTC returns the current time formatted with TimestampLayout.
func NowUTC() string {
	return time.Now().UTC().Format(TimestampLayout)
}
