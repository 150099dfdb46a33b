package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apim-labs/punchlist/internal/checklist"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the read helpers can
// run standalone or inside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// slugColumns joins the slug row back onto all five dimension tables,
// reconstructing the full record.
const slugColumns = `
	SELECT s.address_id, c.name, sec.name, p.name, a.name, sp.text,
	       s.result, s.status, s.comment, s.timestamp, s.instructions
	FROM slugs s
	JOIN checklists c  ON s.checklist_id = c.id
	JOIN sections sec  ON s.section_id   = sec.id
	JOIN procedures p  ON s.procedure_id = p.id
	JOIN actions a     ON s.action_id    = a.id
	JOIN specs sp      ON s.spec_id      = sp.id`

// GetSlug retrieves one slug with its outgoing edges. Returns a
// NotFoundError if the address ID does not exist.
func (s *Store) GetSlug(ctx context.Context, addressID string) (checklist.Slug, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slug, err := getSlugRow(ctx, s.db, addressID)
	if err != nil {
		return checklist.Slug{}, err
	}

	slug.Relationships, err = loadOutgoingEdges(ctx, s.db, addressID)
	if err != nil {
		return checklist.Slug{}, err
	}
	return slug, nil
}

// GetSlugsForChecklist returns all slugs of one checklist ordered by
// (section, procedure, action). A checklist with no slugs yields an empty
// slice, not an error.
func (s *Store) GetSlugsForChecklist(ctx context.Context, name string) ([]checklist.Slug, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, slugColumns+`
		WHERE c.name = ?
		ORDER BY sec.name, p.name, a.name
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query checklist slugs: %w", err)
	}
	return s.collectSlugs(ctx, rows)
}

// ExportAllSlugs returns every slug in the store ordered by
// (checklist, section, procedure, action).
func (s *Store) ExportAllSlugs(ctx context.Context) ([]checklist.Slug, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, slugColumns+`
		ORDER BY c.name, sec.name, p.name, a.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query all slugs: %w", err)
	}
	return s.collectSlugs(ctx, rows)
}

// Relationships returns both edge directions for one slug: outgoing edges
// where it is the subject, and incoming edges where it is the target. No
// cycle handling; the two queries are independent.
func (s *Store) Relationships(ctx context.Context, addressID string) (checklist.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph := checklist.Graph{
		Outgoing: []checklist.Edge{},
		Incoming: []checklist.IncomingEdge{},
	}

	outgoing, err := loadOutgoingEdges(ctx, s.db, addressID)
	if err != nil {
		return checklist.Graph{}, err
	}
	graph.Outgoing = outgoing

	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, predicate FROM relationships WHERE target_id = ?
	`, addressID)
	if err != nil {
		return checklist.Graph{}, fmt.Errorf("query incoming edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var edge checklist.IncomingEdge
		if err := rows.Scan(&edge.Source, &edge.Predicate); err != nil {
			return checklist.Graph{}, fmt.Errorf("scan incoming edge: %w", err)
		}
		graph.Incoming = append(graph.Incoming, edge)
	}
	if err := rows.Err(); err != nil {
		return checklist.Graph{}, fmt.Errorf("iterate incoming edges: %w", err)
	}

	return graph, nil
}

// ListChecklists returns the distinct checklist names that hold at least one
// slug, ordered alphabetically.
func (s *Store) ListChecklists(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT c.name
		FROM checklists c
		JOIN slugs s ON s.checklist_id = c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query checklists: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan checklist name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklists: %w", err)
	}
	return names, nil
}

// History returns the append-only audit rows for one slug, oldest first.
func (s *Store) History(ctx context.Context, addressID string) ([]checklist.Slug, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT address_id, timestamp, result, status, comment
		FROM history
		WHERE address_id = ?
		ORDER BY timestamp
	`, addressID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	snapshots := []checklist.Slug{}
	for rows.Next() {
		var snap checklist.Slug
		var status string
		if err := rows.Scan(&snap.AddressID, &snap.Timestamp, &snap.Result, &status, &snap.Comment); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		snap.Status = checklist.ParseStatus(status)
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return snapshots, nil
}

// collectSlugs drains a slug query and attaches outgoing edges to each row.
// Takes ownership of rows.
func (s *Store) collectSlugs(ctx context.Context, rows *sql.Rows) ([]checklist.Slug, error) {
	defer rows.Close()

	slugs := []checklist.Slug{}
	for rows.Next() {
		slug, err := scanSlug(rows)
		if err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slugs: %w", err)
	}

	for i := range slugs {
		edges, err := loadOutgoingEdges(ctx, s.db, slugs[i].AddressID)
		if err != nil {
			return nil, err
		}
		slugs[i].Relationships = edges
	}
	return slugs, nil
}

// getSlugRow fetches one slug row (without edges) from the db or an open
// transaction. Returns a NotFoundError when the row is absent.
func getSlugRow(ctx context.Context, q querier, addressID string) (checklist.Slug, error) {
	row := q.QueryRowContext(ctx, slugColumns+` WHERE s.address_id = ?`, addressID)

	var slug checklist.Slug
	var status string
	err := row.Scan(
		&slug.AddressID, &slug.Checklist, &slug.Section, &slug.Procedure,
		&slug.Action, &slug.Spec,
		&slug.Result, &status, &slug.Comment, &slug.Timestamp, &slug.Instructions,
	)
	if err == sql.ErrNoRows {
		return checklist.Slug{}, &checklist.NotFoundError{Kind: "slug", Key: addressID}
	}
	if err != nil {
		return checklist.Slug{}, fmt.Errorf("scan slug: %w", err)
	}

	slug.Status = checklist.ParseStatus(status)
	return slug, nil
}

// scanSlug scans one row of a slugColumns query.
func scanSlug(rows *sql.Rows) (checklist.Slug, error) {
	var slug checklist.Slug
	var status string
	err := rows.Scan(
		&slug.AddressID, &slug.Checklist, &slug.Section, &slug.Procedure,
		&slug.Action, &slug.Spec,
		&slug.Result, &status, &slug.Comment, &slug.Timestamp, &slug.Instructions,
	)
	if err != nil {
		return checklist.Slug{}, fmt.Errorf("scan slug: %w", err)
	}
	slug.Status = checklist.ParseStatus(status)
	return slug, nil
}

// loadOutgoingEdges returns the outgoing edges for one subject.
func loadOutgoingEdges(ctx context.Context, q querier, addressID string) ([]checklist.Edge, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT predicate, target_id FROM relationships WHERE subject_id = ?
	`, addressID)
	if err != nil {
		return nil, fmt.Errorf("query outgoing edges: %w", err)
	}
	defer rows.Close()

	edges := []checklist.Edge{}
	for rows.Next() {
		var edge checklist.Edge
		if err := rows.Scan(&edge.Predicate, &edge.Target); err != nil {
			return nil, fmt.Errorf("scan outgoing edge: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outgoing edges: %w", err)
	}
	return edges, nil
}
