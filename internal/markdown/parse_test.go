package markdown

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apim-labs/punchlist/internal/checklist"
	"github.com/apim-labs/punchlist/internal/ident"
)

const validDoc = `# Networking

## Switch bring-up

- **Action**: Verify uplink
- **Spec**: 1GbE link up
- **Result**: no link
- **Status**: Fail
- **Comment**: No link LED on port 48.
- **Timestamp**: 2026-01-02T03:04:05Z

### Instructions
Patch into the core switch.

Check SFP seating.

### Relationships
- (none)

## DHCP scope

- **Action**: Request lease
- **Spec**: Lease within 1s
- **Status**: NA

### Instructions
TBD
`

func TestParse_ValidDocument(t *testing.T) {
	slugs, err := Parse("net", validDoc)
	require.NoError(t, err)
	require.Len(t, slugs, 2)

	first := slugs[0]
	assert.Equal(t, "net", first.Checklist)
	assert.Equal(t, "Networking", first.Section)
	assert.Equal(t, "Switch bring-up", first.Procedure)
	assert.Equal(t, "Verify uplink", first.Action)
	assert.Equal(t, "1GbE link up", first.Spec)
	assert.Equal(t, "no link", first.Result)
	assert.Equal(t, checklist.StatusFail, first.Status)
	assert.Equal(t, "No link LED on port 48.", first.Comment)
	assert.Equal(t, "2026-01-02T03:04:05Z", first.Timestamp)
	assert.Equal(t, "Patch into the core switch.\n\nCheck SFP seating.", first.Instructions)
	assert.Empty(t, first.Relationships)

	wantID := ident.AddressID("net", "Networking", "Switch bring-up", "Verify uplink", "1GbE link up")
	assert.Equal(t, wantID, first.AddressID)

	second := slugs[1]
	assert.Equal(t, "DHCP scope", second.Procedure)
	assert.Equal(t, checklist.StatusNA, second.Status)
	assert.Equal(t, "Networking", second.Section, "section carries over until the next H1")
	assert.Equal(t, "TBD", second.Instructions)
}

func TestParse_RelationshipEdges(t *testing.T) {
	doc := `# S

## P

- **Action**: A
- **Spec**: Sp
- **Status**: Pass

### Relationships
- depends_on TARGET0000000001
- blocks TARGET0000000002
`
	slugs, err := Parse("c", doc)
	require.NoError(t, err)
	require.Len(t, slugs, 1)
	require.Len(t, slugs[0].Relationships, 2)
	assert.Equal(t, checklist.Edge{Predicate: "depends_on", Target: "TARGET0000000001"}, slugs[0].Relationships[0])
	assert.Equal(t, checklist.Edge{Predicate: "blocks", Target: "TARGET0000000002"}, slugs[0].Relationships[1])
}

func TestParse_IDHintMatch(t *testing.T) {
	id := ident.AddressID("c", "S", "P", "A", "Sp")
	doc := fmt.Sprintf(`# S

## P

- **Action**: A
- **Spec**: Sp
- **Status**: Pass

### Relationships
**Checklist ID:** %s
- (none)
`, id)

	slugs, err := Parse("c", doc)
	require.NoError(t, err)
	assert.Equal(t, id, slugs[0].AddressID)
}

func TestParse_IDHintMismatch(t *testing.T) {
	id := ident.AddressID("c", "S", "P", "A", "Sp")

	// Flip the first symbol so the hint is guaranteed wrong.
	flipped := "0"
	if id[0] == '0' {
		flipped = "1"
	}
	badHint := flipped + id[1:]

	doc := fmt.Sprintf(`# S

## P

- **Action**: A
- **Spec**: Sp
- **Status**: Pass

### Relationships
**Checklist ID:** %s
`, badHint)

	_, err := Parse("c", doc)
	require.Error(t, err)
	assert.True(t, checklist.IsValidation(err))
	assert.Contains(t, err.Error(), id, "error names the expected identifier")
	assert.Contains(t, err.Error(), badHint, "error names the found identifier")
}

func TestParse_MissingStatus(t *testing.T) {
	doc := `# S

## P

- **Action**: A
- **Spec**: Sp
`
	_, err := Parse("c", doc)
	require.Error(t, err)
	assert.True(t, checklist.IsValidation(err))
	assert.Contains(t, err.Error(), "Status")
}

func TestParse_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		field   string
	}{
		{
			name:  "no section",
			doc:   "## P\n\n- **Action**: A\n- **Spec**: Sp\n- **Status**: Pass\n",
			field: "Section",
		},
		{
			name:  "no action",
			doc:   "# S\n\n## P\n\n- **Spec**: Sp\n- **Status**: Pass\n",
			field: "Action",
		},
		{
			name:  "no spec",
			doc:   "# S\n\n## P\n\n- **Action**: A\n- **Status**: Pass\n",
			field: "Spec",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("c", tc.doc)
			require.Error(t, err)
			assert.True(t, checklist.IsValidation(err))
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestParse_UnknownStatus(t *testing.T) {
	doc := "# S\n\n## P\n\n- **Action**: A\n- **Spec**: Sp\n- **Status**: Maybe\n"

	_, err := Parse("c", doc)
	require.Error(t, err)
	assert.True(t, checklist.IsValidation(err))
	assert.Contains(t, err.Error(), "Status")
	assert.Contains(t, err.Error(), "Maybe")
}

func TestParse_StatusVariants(t *testing.T) {
	for _, variant := range []string{"pass", "PASS", "n/a", "na", "other", "FAIL"} {
		doc := fmt.Sprintf("# S\n\n## P\n\n- **Action**: A\n- **Spec**: Sp\n- **Status**: %s\n", variant)
		slugs, err := Parse("c", doc)
		require.NoError(t, err, "status %q should parse", variant)
		assert.NotEqual(t, checklist.StatusUnknown, slugs[0].Status)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := Parse("c", "")
	require.Error(t, err)
	assert.True(t, checklist.IsValidation(err))
}

func TestParse_HeadingsOnlyDocument(t *testing.T) {
	_, err := Parse("c", "# Section One\n\n# Section Two\n")
	require.Error(t, err)
	assert.True(t, checklist.IsValidation(err))
}

func TestParse_MalformedRelationshipBullet(t *testing.T) {
	doc := `# S

## P

- **Action**: A
- **Spec**: Sp
- **Status**: Pass

### Relationships
- loneword
`
	_, err := Parse("c", doc)
	require.Error(t, err)
	assert.True(t, checklist.IsValidation(err))
	assert.Contains(t, err.Error(), "predicate TARGET_ID")
}

func TestParse_UnrecognizedBulletIsWarningOnly(t *testing.T) {
	doc := `# S

## P

- **Action**: A
- **Spec**: Sp
- **Status**: Pass
- **Severity**: high
- bullet without separator
`
	slugs, err := Parse("c", doc)
	require.NoError(t, err, "unknown bullets must not fail the document")
	require.Len(t, slugs, 1)
}

func TestParse_CRLFLineEndings(t *testing.T) {
	doc := strings.ReplaceAll(validDoc, "\n", "\r\n")
	slugs, err := Parse("net", doc)
	require.NoError(t, err)
	assert.Len(t, slugs, 2)
}
