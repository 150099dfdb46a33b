package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apim-labs/punchlist/internal/checklist"
)

// UpsertSlug inserts or updates one slug, resolving (and lazily creating)
// its five dimension rows. On conflict only the mutable fields are
// overwritten: identity fields cannot change through this path because the
// address ID is a function of them.
func (s *Store) UpsertSlug(ctx context.Context, slug checklist.Slug) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert slug: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertSlugTx(ctx, tx, slug); err != nil {
		return fmt.Errorf("upsert slug: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert slug: commit: %w", err)
	}
	return nil
}

// ReplaceRelationships atomically swaps all outgoing edges for one subject.
// A failure leaves the prior edge set intact.
func (s *Store) ReplaceRelationships(ctx context.Context, subjectID string, edges []checklist.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace relationships: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceRelationshipsTx(ctx, tx, subjectID, edges); err != nil {
		return fmt.Errorf("replace relationships: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace relationships: commit: %w", err)
	}
	return nil
}

// ReplaceChecklist atomically swaps an entire checklist's slug set.
//
// Every slug must belong to the named checklist; the batch is rejected with
// a ValidationError before any mutation otherwise. Within one transaction
// the existing checklist row is deleted (cascading through its dimension
// rows, slugs, relationships, and history), the new slugs are upserted, and
// their declared edges inserted. Any failure rolls the whole swap back.
func (s *Store) ReplaceChecklist(ctx context.Context, name string, slugs []checklist.Slug) error {
	for _, slug := range slugs {
		if slug.Checklist != name {
			return &checklist.ValidationError{
				Field:    "Checklist",
				Message:  fmt.Sprintf("slug %s belongs to a different checklist", slug.AddressID),
				Expected: name,
				Found:    slug.Checklist,
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace checklist: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Cascades remove the checklist's sections, procedures, actions, specs,
	// slugs, relationships, and history in one statement.
	if _, err := tx.ExecContext(ctx, `DELETE FROM checklists WHERE name = ?`, name); err != nil {
		return fmt.Errorf("replace checklist: delete existing: %w", err)
	}

	for _, slug := range slugs {
		if err := upsertSlugTx(ctx, tx, slug); err != nil {
			return fmt.Errorf("replace checklist: %w", err)
		}
	}

	// Edges last, after every slug of the batch exists.
	for _, slug := range slugs {
		for _, edge := range slug.Relationships {
			if err := insertEdgeTx(ctx, tx, slug.AddressID, edge); err != nil {
				return fmt.Errorf("replace checklist: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace checklist: commit: %w", err)
	}
	return nil
}

// ApplyUpdate merge-patches one slug's outcome fields and appends a history
// snapshot. Absent fields are left unchanged; the timestamp defaults to the
// current UTC time. Returns a NotFoundError if the slug does not exist.
func (s *Store) ApplyUpdate(ctx context.Context, upd checklist.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply update: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.applyUpdateTx(ctx, tx, upd); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply update: commit: %w", err)
	}
	return nil
}

// ApplyBulkUpdates applies a list of merge-patches inside one transaction:
// all succeed or none take effect.
func (s *Store) ApplyBulkUpdates(ctx context.Context, updates []checklist.Update) error {
	if len(updates) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply bulk updates: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, upd := range updates {
		if err := s.applyUpdateTx(ctx, tx, upd); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply bulk updates: commit: %w", err)
	}
	return nil
}

// applyUpdateTx performs one merge-patch within an open transaction.
func (s *Store) applyUpdateTx(ctx context.Context, tx *sql.Tx, upd checklist.Update) error {
	existing, err := getSlugRow(ctx, tx, upd.AddressID)
	if err != nil {
		return err
	}

	if upd.Result != nil {
		existing.Result = *upd.Result
	}
	if upd.Status != nil {
		existing.Status = *upd.Status
	}
	if upd.Comment != nil {
		existing.Comment = *upd.Comment
	}
	if upd.Timestamp != nil {
		existing.Timestamp = *upd.Timestamp
	} else {
		existing.Timestamp = s.now()
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE slugs SET result = ?, status = ?, comment = ?, timestamp = ?
		WHERE address_id = ?
	`,
		existing.Result,
		existing.Status.String(),
		existing.Comment,
		existing.Timestamp,
		existing.AddressID,
	)
	if err != nil {
		return fmt.Errorf("update slug: %w", err)
	}

	return insertHistoryTx(ctx, tx, existing)
}

// insertHistoryTx appends one history snapshot. A repeated timestamp for the
// same slug is silently ignored so idempotent retries do not duplicate rows.
func insertHistoryTx(ctx context.Context, tx *sql.Tx, slug checklist.Slug) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO history (address_id, timestamp, result, status, comment)
		VALUES (?, ?, ?, ?, ?)
	`,
		slug.AddressID,
		slug.Timestamp,
		slug.Result,
		slug.Status.String(),
		slug.Comment,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// upsertSlugTx resolves the dimension rows and writes the slug row.
func upsertSlugTx(ctx context.Context, tx *sql.Tx, slug checklist.Slug) error {
	checklistID, err := resolveChecklistTx(ctx, tx, slug.Checklist)
	if err != nil {
		return err
	}
	sectionID, err := resolveScopedTx(ctx, tx, "sections", "name", "checklist_id", checklistID, slug.Section)
	if err != nil {
		return err
	}
	procedureID, err := resolveScopedTx(ctx, tx, "procedures", "name", "section_id", sectionID, slug.Procedure)
	if err != nil {
		return err
	}
	actionID, err := resolveScopedTx(ctx, tx, "actions", "name", "procedure_id", procedureID, slug.Action)
	if err != nil {
		return err
	}
	specID, err := resolveScopedTx(ctx, tx, "specs", "text", "action_id", actionID, slug.Spec)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO slugs
		(address_id, checklist_id, section_id, procedure_id, action_id, spec_id,
		 result, status, comment, timestamp, instructions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(address_id) DO UPDATE SET
			result = excluded.result,
			status = excluded.status,
			comment = excluded.comment,
			timestamp = excluded.timestamp,
			instructions = excluded.instructions
	`,
		slug.AddressID,
		checklistID,
		sectionID,
		procedureID,
		actionID,
		specID,
		slug.Result,
		slug.Status.String(),
		slug.Comment,
		slug.Timestamp,
		slug.Instructions,
	)
	if err != nil {
		return fmt.Errorf("insert slug %s: %w", slug.AddressID, err)
	}
	return nil
}

// insertEdgeTx adds one relationship edge. No unique constraint: duplicate
// edges are possible unless callers go through ReplaceRelationships.
func insertEdgeTx(ctx context.Context, tx *sql.Tx, subjectID string, edge checklist.Edge) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO relationships (subject_id, predicate, target_id)
		VALUES (?, ?, ?)
	`, subjectID, edge.Predicate, edge.Target)
	if err != nil {
		return fmt.Errorf("insert edge %s -%s-> %s: %w", subjectID, edge.Predicate, edge.Target, err)
	}
	return nil
}

// replaceRelationshipsTx deletes then reinserts all outgoing edges for one
// subject within an open transaction.
func replaceRelationshipsTx(ctx context.Context, tx *sql.Tx, subjectID string, edges []checklist.Edge) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE subject_id = ?`, subjectID); err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	for _, edge := range edges {
		if err := insertEdgeTx(ctx, tx, subjectID, edge); err != nil {
			return err
		}
	}
	return nil
}

// resolveChecklistTx returns the surrogate key for a checklist name,
// creating the row on first reference.
func resolveChecklistTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO checklists (name) VALUES (?) ON CONFLICT(name) DO NOTHING
	`, name); err != nil {
		return 0, fmt.Errorf("insert checklist %q: %w", name, err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM checklists WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve checklist %q: %w", name, err)
	}
	return id, nil
}

// resolveScopedTx returns the surrogate key for a dimension value that is
// unique within its parent, creating the row on first reference.
func resolveScopedTx(ctx context.Context, tx *sql.Tx, table, valueCol, parentCol string, parentID int64, value string) (int64, error) {
	insert := fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES (?, ?) ON CONFLICT(%s, %s) DO NOTHING`,
		table, valueCol, parentCol, parentCol, valueCol,
	)
	if _, err := tx.ExecContext(ctx, insert, value, parentID); err != nil {
		return 0, fmt.Errorf("insert %s %q: %w", table, value, err)
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE %s = ? AND %s = ?`, table, parentCol, valueCol)
	var id int64
	if err := tx.QueryRowContext(ctx, query, parentID, value).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve %s %q: %w", table, value, err)
	}
	return id, nil
}
