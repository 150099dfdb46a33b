// Package checklist defines the domain model shared by the store, the
// markdown codec, and the transport layers.
//
// The unit of record is the Slug: one verification item (an Action checked
// against a Spec) scoped by its Checklist, Section, and Procedure, carrying a
// Pass/Fail/NA/Other outcome plus free-text result, comment, timestamp, and
// instructions. Slugs are identified by a content-derived address ID computed
// in the ident package; the five identity fields are immutable once a slug
// exists.
//
// Slugs link to each other through directed, predicate-labeled relationship
// edges (for example "depends_on"). Edges carry no cycle or existence
// validation beyond the store's foreign keys.
//
// Failures surface as typed errors: ValidationError for malformed input with
// the offending field named, NotFoundError for missing rows. Callers match
// them with IsValidation and IsNotFound rather than string comparison.
package checklist
