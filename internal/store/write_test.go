package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apim-labs/punchlist/internal/checklist"
)

func TestUpsertSlug_InsertThenUpdate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	slug := makeSlug("net", "Core", "Uplink", "Verify link", "1GbE up")
	slug.Result = "link up"
	require.NoError(t, s.UpsertSlug(ctx, slug))

	// Same address ID, different mutable fields: row is updated in place.
	slug.Result = "link down"
	slug.Status = checklist.StatusFail
	slug.Comment = "flapping"
	require.NoError(t, s.UpsertSlug(ctx, slug))

	got, err := s.GetSlug(ctx, slug.AddressID)
	require.NoError(t, err)
	assert.Equal(t, "link down", got.Result)
	assert.Equal(t, checklist.StatusFail, got.Status)
	assert.Equal(t, "flapping", got.Comment)
	assert.Equal(t, "Core", got.Section)

	// Dimension rows are shared, not duplicated.
	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM sections").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUpsertSlug_DimensionsScopedToParent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Same section name under two checklists must produce two section rows.
	require.NoError(t, s.UpsertSlug(ctx, makeSlug("alpha", "Networking", "P1", "A1", "S1")))
	require.NoError(t, s.UpsertSlug(ctx, makeSlug("beta", "Networking", "P1", "A1", "S1")))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM sections WHERE name = 'Networking'").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestReplaceRelationships_Swap(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := makeSlug("net", "S", "PA", "A", "Sp")
	b := makeSlug("net", "S", "PB", "A", "Sp")
	c := makeSlug("net", "S", "PC", "A", "Sp")
	for _, slug := range []checklist.Slug{a, b, c} {
		require.NoError(t, s.UpsertSlug(ctx, slug))
	}

	require.NoError(t, s.ReplaceRelationships(ctx, a.AddressID, []checklist.Edge{
		{Predicate: "depends_on", Target: b.AddressID},
	}))
	require.NoError(t, s.ReplaceRelationships(ctx, a.AddressID, []checklist.Edge{
		{Predicate: "blocks", Target: c.AddressID},
	}))

	graph, err := s.Relationships(ctx, a.AddressID)
	require.NoError(t, err)
	require.Len(t, graph.Outgoing, 1, "replace must swap, not append")
	assert.Equal(t, "blocks", graph.Outgoing[0].Predicate)
	assert.Equal(t, c.AddressID, graph.Outgoing[0].Target)
}

func TestReplaceRelationships_Symmetry(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := makeSlug("net", "S", "PA", "A", "Sp")
	b := makeSlug("net", "S", "PB", "A", "Sp")
	require.NoError(t, s.UpsertSlug(ctx, a))
	require.NoError(t, s.UpsertSlug(ctx, b))

	require.NoError(t, s.ReplaceRelationships(ctx, a.AddressID, []checklist.Edge{
		{Predicate: "depends_on", Target: b.AddressID},
	}))

	graph, err := s.Relationships(ctx, b.AddressID)
	require.NoError(t, err)
	require.Len(t, graph.Incoming, 1)
	assert.Equal(t, a.AddressID, graph.Incoming[0].Source)
	assert.Equal(t, "depends_on", graph.Incoming[0].Predicate)
}

func TestReplaceRelationships_UnknownTargetRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := makeSlug("net", "S", "PA", "A", "Sp")
	b := makeSlug("net", "S", "PB", "A", "Sp")
	require.NoError(t, s.UpsertSlug(ctx, a))
	require.NoError(t, s.UpsertSlug(ctx, b))
	require.NoError(t, s.ReplaceRelationships(ctx, a.AddressID, []checklist.Edge{
		{Predicate: "depends_on", Target: b.AddressID},
	}))

	// Foreign key violation mid-swap: prior edge set must survive.
	err := s.ReplaceRelationships(ctx, a.AddressID, []checklist.Edge{
		{Predicate: "depends_on", Target: "NO5VCHADDRE55000"},
	})
	require.Error(t, err)

	graph, err := s.Relationships(ctx, a.AddressID)
	require.NoError(t, err)
	require.Len(t, graph.Outgoing, 1)
	assert.Equal(t, b.AddressID, graph.Outgoing[0].Target)
}

func TestReplaceChecklist_Swap(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	old := makeSlug("net", "Old Section", "Old Proc", "A", "Sp")
	require.NoError(t, s.UpsertSlug(ctx, old))

	next := makeSlug("net", "New Section", "New Proc", "A", "Sp")
	require.NoError(t, s.ReplaceChecklist(ctx, "net", []checklist.Slug{next}))

	_, err := s.GetSlug(ctx, old.AddressID)
	assert.True(t, checklist.IsNotFound(err), "old slug should be gone")

	slugs, err := s.GetSlugsForChecklist(ctx, "net")
	require.NoError(t, err)
	require.Len(t, slugs, 1)
	assert.Equal(t, "New Section", slugs[0].Section)

	// Orphaned dimension rows are cascaded away with the checklist.
	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM sections WHERE name = 'Old Section'").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestReplaceChecklist_EdgesWithinBatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := makeSlug("net", "S", "P1", "A", "Sp")
	second := makeSlug("net", "S", "P2", "A", "Sp")
	second.Relationships = []checklist.Edge{{Predicate: "depends_on", Target: first.AddressID}}

	require.NoError(t, s.ReplaceChecklist(ctx, "net", []checklist.Slug{second, first}))

	graph, err := s.Relationships(ctx, first.AddressID)
	require.NoError(t, err)
	require.Len(t, graph.Incoming, 1)
	assert.Equal(t, second.AddressID, graph.Incoming[0].Source)
}

func TestReplaceChecklist_WrongChecklistFailsFast(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	existing := makeSlug("X", "S", "P", "A", "Sp")
	require.NoError(t, s.UpsertSlug(ctx, existing))

	good := makeSlug("X", "S", "P2", "A", "Sp")
	stray := makeSlug("Y", "S", "P3", "A", "Sp")

	err := s.ReplaceChecklist(ctx, "X", []checklist.Slug{good, stray})
	require.Error(t, err)
	assert.True(t, checklist.IsValidation(err))

	// Observable state is unchanged from before the call.
	names, err := s.ListChecklists(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, names)

	slugs, err := s.GetSlugsForChecklist(ctx, "X")
	require.NoError(t, err)
	require.Len(t, slugs, 1)
	assert.Equal(t, existing.AddressID, slugs[0].AddressID)
}

func TestReplaceChecklist_MidBatchFailureRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	existing := makeSlug("X", "S", "P", "A", "Sp")
	require.NoError(t, s.UpsertSlug(ctx, existing))

	// An edge to a nonexistent target violates the foreign key after the
	// delete and upserts already ran inside the transaction.
	replacement := makeSlug("X", "S", "P2", "A", "Sp")
	replacement.Relationships = []checklist.Edge{{Predicate: "depends_on", Target: "M1551NGTARGET000"}}

	err := s.ReplaceChecklist(ctx, "X", []checklist.Slug{replacement})
	require.Error(t, err)

	slugs, err := s.GetSlugsForChecklist(ctx, "X")
	require.NoError(t, err)
	require.Len(t, slugs, 1)
	assert.Equal(t, existing.AddressID, slugs[0].AddressID, "pre-call state must survive rollback")
}

func TestReplaceChecklist_CascadesHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	slug := makeSlug("X", "S", "P", "A", "Sp")
	require.NoError(t, s.UpsertSlug(ctx, slug))
	require.NoError(t, s.ApplyUpdate(ctx, checklist.Update{
		AddressID: slug.AddressID,
		Comment:   strPtr("first pass"),
	}))

	replacement := makeSlug("X", "S", "P2", "A", "Sp")
	require.NoError(t, s.ReplaceChecklist(ctx, "X", []checklist.Slug{replacement}))

	var count int
	require.NoError(t, s.db.QueryRow(
		"SELECT COUNT(*) FROM history WHERE address_id = ?", slug.AddressID,
	).Scan(&count))
	assert.Equal(t, 0, count, "history of removed slugs must cascade away")
}

func TestApplyUpdate_PartialIndependence(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	slug := makeSlug("net", "S", "P", "A", "Sp")
	slug.Result = "24.1V"
	slug.Status = checklist.StatusPass
	slug.Comment = "initial"
	require.NoError(t, s.UpsertSlug(ctx, slug))

	require.NoError(t, s.ApplyUpdate(ctx, checklist.Update{
		AddressID: slug.AddressID,
		Comment:   strPtr("re-measured"),
	}))

	got, err := s.GetSlug(ctx, slug.AddressID)
	require.NoError(t, err)
	assert.Equal(t, "24.1V", got.Result, "result must be untouched")
	assert.Equal(t, checklist.StatusPass, got.Status, "status must be untouched")
	assert.Equal(t, "re-measured", got.Comment)
	assert.Equal(t, "2026-01-02T03:04:05Z", got.Timestamp, "timestamp stamped with store clock")

	history, err := s.History(ctx, slug.AddressID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "re-measured", history[0].Comment)
}

func TestApplyUpdate_DuplicateTimestampIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	slug := makeSlug("net", "S", "P", "A", "Sp")
	require.NoError(t, s.UpsertSlug(ctx, slug))

	upd := checklist.Update{
		AddressID: slug.AddressID,
		Comment:   strPtr("same"),
		Timestamp: strPtr("2026-05-05T05:05:05Z"),
	}
	require.NoError(t, s.ApplyUpdate(ctx, upd))
	require.NoError(t, s.ApplyUpdate(ctx, upd))

	history, err := s.History(ctx, slug.AddressID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "identical (id, timestamp) must not duplicate history")
}

func TestApplyUpdate_ExplicitTimestampAndStatus(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	slug := makeSlug("net", "S", "P", "A", "Sp")
	require.NoError(t, s.UpsertSlug(ctx, slug))

	require.NoError(t, s.ApplyUpdate(ctx, checklist.Update{
		AddressID: slug.AddressID,
		Result:    strPtr("48 Gbps"),
		Status:    statusPtr(checklist.StatusFail),
		Timestamp: strPtr("2026-07-07T07:07:07Z"),
	}))

	got, err := s.GetSlug(ctx, slug.AddressID)
	require.NoError(t, err)
	assert.Equal(t, "48 Gbps", got.Result)
	assert.Equal(t, checklist.StatusFail, got.Status)
	assert.Equal(t, "2026-07-07T07:07:07Z", got.Timestamp)
}

func TestApplyUpdate_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.ApplyUpdate(context.Background(), checklist.Update{AddressID: "N0PE000000000000"})
	require.Error(t, err)
	assert.True(t, checklist.IsNotFound(err))
}

func TestApplyBulkUpdates_AllOrNothing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	slug := makeSlug("net", "S", "P", "A", "Sp")
	slug.Comment = "untouched"
	require.NoError(t, s.UpsertSlug(ctx, slug))

	err := s.ApplyBulkUpdates(ctx, []checklist.Update{
		{AddressID: slug.AddressID, Comment: strPtr("changed")},
		{AddressID: "M155ticker000000", Comment: strPtr("boom")},
	})
	require.Error(t, err)
	assert.True(t, checklist.IsNotFound(err))

	got, err := s.GetSlug(ctx, slug.AddressID)
	require.NoError(t, err)
	assert.Equal(t, "untouched", got.Comment, "failed batch must discard all effects")

	history, err := s.History(ctx, slug.AddressID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestApplyBulkUpdates_Success(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := makeSlug("net", "S", "P1", "A", "Sp")
	b := makeSlug("net", "S", "P2", "A", "Sp")
	require.NoError(t, s.UpsertSlug(ctx, a))
	require.NoError(t, s.UpsertSlug(ctx, b))

	require.NoError(t, s.ApplyBulkUpdates(ctx, []checklist.Update{
		{AddressID: a.AddressID, Status: statusPtr(checklist.StatusFail)},
		{AddressID: b.AddressID, Status: statusPtr(checklist.StatusNA)},
	}))

	gotA, err := s.GetSlug(ctx, a.AddressID)
	require.NoError(t, err)
	gotB, err := s.GetSlug(ctx, b.AddressID)
	require.NoError(t, err)
	assert.Equal(t, checklist.StatusFail, gotA.Status)
	assert.Equal(t, checklist.StatusNA, gotB.Status)
}
