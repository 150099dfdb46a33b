// Package store provides SQLite-backed storage for checklist slugs.
//
// The schema is normalized: five dimension tables (checklists, sections,
// procedures, actions, specs) carry the identity hierarchy, the slugs table
// references one row from each, and relationships/history hang off slugs.
// Cascading deletes flow from the dimension tables through slugs down to
// relationships and history, so removing a checklist removes everything it
// owns in one statement.
//
// # Concurrency
//
// A single coarse mutex serializes every operation, reads included, against
// the one backing connection. Multi-statement mutations additionally run
// inside an explicit transaction: the mutex is the serialization guarantee,
// the transaction is the atomicity guarantee. A mid-sequence failure rolls
// the store back to its pre-call state.
//
// # Migration
//
// Opening a database that still uses the legacy flat slugs layout (identity
// text inlined as columns instead of dimension foreign keys) drops and
// recreates all core tables. This is deliberate: the store honors a
// demo/ephemeral contract and does not attempt forward migration. A warning
// is logged before the drop.
//
// # Database Configuration
//
//   - foreign_keys=ON: referential integrity and cascades (fatal if it fails)
//   - journal_mode=WAL: concurrent reads during writes (best effort)
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// Address IDs are computed by the ident package; the store never re-derives
// them and trusts the IDs callers supply.
package store
