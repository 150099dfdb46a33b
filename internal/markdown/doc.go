// Package markdown converts checklists between slug records and the
// human-authorable document format.
//
// The grammar, top to bottom: a level-1 heading opens a section, a level-2
// heading opens a checklist item (the procedure), `- **Field**: value`
// bullets fill the item's fields, an "### Instructions" block accumulates
// free text, and an "### Relationships" block carries the item's address ID
// plus its outgoing edges as `- predicate TARGET_ID` bullets.
//
// Parse validates strictly: section, procedure, action, spec, and a known
// status are required for every item, and a `**Checklist ID:**` hint that
// disagrees with the computed address ID fails the document. Unrecognized
// bullets are logged as warnings, not failures. Export canonicalizes:
// fixed (section, procedure, action) sort order and fixed bullet casing,
// so parse(export(slugs)) reproduces the same slug data.
package markdown
