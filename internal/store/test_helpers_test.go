package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apim-labs/punchlist/internal/checklist"
	"github.com/apim-labs/punchlist/internal/ident"
)

// createTestStore opens a fresh on-disk store in a temp dir with a frozen
// clock so history rows are deterministic.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, Options{})
	require.NoError(t, err)
	s.now = func() string { return "2026-01-02T03:04:05Z" }
	t.Cleanup(func() { s.Close() })
	return s
}

// makeSlug builds a slug with a computed address ID and sensible defaults.
func makeSlug(checklistName, section, procedure, action, spec string) checklist.Slug {
	return checklist.Slug{
		AddressID: ident.AddressID(checklistName, section, procedure, action, spec),
		Checklist: checklistName,
		Section:   section,
		Procedure: procedure,
		Action:    action,
		Spec:      spec,
		Status:    checklist.StatusPass,
		Timestamp: "2026-01-01T00:00:00Z",
	}
}

func strPtr(s string) *string { return &s }

func statusPtr(s checklist.Status) *checklist.Status { return &s }
