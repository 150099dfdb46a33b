package markdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apim-labs/punchlist/internal/checklist"
)

// Export renders a checklist's slugs into the document format. Slugs are
// sorted by (section, procedure, action) and consecutive same-section slugs
// share one `# Section` heading. The stored address ID is emitted verbatim;
// export never re-derives identity.
func Export(checklistName string, slugs []checklist.Slug) (string, error) {
	if len(slugs) == 0 {
		return "", checklist.NewValidationError("Checklist",
			fmt.Sprintf("checklist %q contains no slugs to export", checklistName))
	}

	ordered := make([]checklist.Slug, len(slugs))
	copy(ordered, slugs)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		if a.Procedure != b.Procedure {
			return a.Procedure < b.Procedure
		}
		return a.Action < b.Action
	})

	var out strings.Builder
	currentSection := ""

	for _, slug := range ordered {
		if slug.Section != currentSection {
			if currentSection != "" {
				out.WriteString("\n")
			}
			currentSection = slug.Section
			fmt.Fprintf(&out, "# %s\n\n", currentSection)
		}

		fmt.Fprintf(&out, "## %s\n\n", slug.Procedure)
		fmt.Fprintf(&out, "- **Action**: %s\n", slug.Action)
		fmt.Fprintf(&out, "- **Spec**: %s\n", slug.Spec)
		fmt.Fprintf(&out, "- **Result**: %s\n", slug.Result)
		fmt.Fprintf(&out, "- **Status**: %s\n", slug.Status)
		fmt.Fprintf(&out, "- **Comment**: %s\n", slug.Comment)
		if slug.Timestamp != "" {
			fmt.Fprintf(&out, "- **Timestamp**: %s\n", slug.Timestamp)
		}

		out.WriteString("\n### Instructions\n")
		if slug.Instructions == "" {
			out.WriteString("TBD\n\n")
		} else {
			out.WriteString(slug.Instructions + "\n\n")
		}

		out.WriteString("### Relationships\n")
		fmt.Fprintf(&out, "**Checklist ID:** %s\n", slug.AddressID)
		if len(slug.Relationships) == 0 {
			out.WriteString("- (none)\n")
		} else {
			for _, edge := range slug.Relationships {
				fmt.Fprintf(&out, "- %s %s\n", edge.Predicate, edge.Target)
			}
		}
		out.WriteString("\n")
	}

	return out.String(), nil
}
