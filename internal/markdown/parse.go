package markdown

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/apim-labs/punchlist/internal/checklist"
	"github.com/apim-labs/punchlist/internal/ident"
)

// itemBuilder accumulates one checklist item between `##` headings.
type itemBuilder struct {
	section      string
	procedure    string
	action       string
	spec         string
	result       string
	status       string
	comment      string
	timestamp    string
	instructions strings.Builder
	edges        []checklist.Edge
	idHint       string
}

// Parse reads a checklist document and returns its slugs in document order,
// each with its computed address ID. The first grammar violation fails the
// whole document; a document yielding zero items is itself an error.
func Parse(checklistName, content string) ([]checklist.Slug, error) {
	var slugs []checklist.Slug

	var (
		currentSection  string
		builder         itemBuilder
		inInstructions  bool
		inRelationships bool
	)

	flush := func() error {
		if builder.procedure == "" {
			return nil
		}
		slug, err := finalizeItem(checklistName, &builder)
		if err != nil {
			return err
		}
		slugs = append(slugs, slug)
		builder = itemBuilder{section: currentSection}
		inInstructions = false
		inRelationships = false
		return nil
	}

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(rawLine, "\r"))
		if line == "" {
			// Blank lines inside an instructions block become paragraph breaks.
			if inInstructions && builder.instructions.Len() > 0 {
				builder.instructions.WriteByte('\n')
			}
			continue
		}

		if rest, ok := strings.CutPrefix(line, "# "); ok {
			if err := flush(); err != nil {
				return nil, err
			}
			currentSection = strings.TrimSpace(rest)
			builder.section = currentSection
			continue
		}

		if rest, ok := strings.CutPrefix(line, "## "); ok {
			if err := flush(); err != nil {
				return nil, err
			}
			builder.procedure = strings.TrimSpace(rest)
			builder.section = currentSection
			continue
		}

		if rest, ok := strings.CutPrefix(line, "### "); ok {
			switch strings.ToLower(strings.TrimSpace(rest)) {
			case "instructions":
				inInstructions = true
				inRelationships = false
			case "relationships":
				inRelationships = true
				inInstructions = false
			}
			continue
		}

		if inInstructions {
			if builder.instructions.Len() > 0 {
				builder.instructions.WriteByte('\n')
			}
			builder.instructions.WriteString(line)
			continue
		}

		if inRelationships {
			if err := parseRelationshipLine(line, &builder); err != nil {
				return nil, err
			}
			continue
		}

		if strings.HasPrefix(line, "-") {
			parseFieldBullet(line, &builder)
			continue
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	if len(slugs) == 0 {
		return nil, checklist.NewValidationError("Checklist",
			"no checklist procedures were parsed from markdown")
	}
	return slugs, nil
}

// parseRelationshipLine handles one line inside a Relationships block:
// the checklist ID hint, a `- predicate TARGET` edge, or the `- (none)`
// placeholder.
func parseRelationshipLine(line string, builder *itemBuilder) error {
	const hintPrefix = "**checklist id:**"
	if strings.HasPrefix(strings.ToLower(line), hintPrefix) {
		builder.idHint = strings.TrimSpace(line[len(hintPrefix):])
		return nil
	}

	if !strings.HasPrefix(line, "-") {
		return nil
	}

	edgeText := strings.TrimSpace(line[1:])
	if strings.EqualFold(edgeText, "(none)") {
		return nil
	}

	space := strings.Index(edgeText, " ")
	if space < 0 {
		return checklist.NewValidationError("Relationships",
			"relationship must be 'predicate TARGET_ID'")
	}
	edge := checklist.Edge{
		Predicate: strings.TrimSpace(edgeText[:space]),
		Target:    strings.TrimSpace(edgeText[space+1:]),
	}
	if edge.Predicate == "" {
		return checklist.NewValidationError("Relationships", "relationship predicate cannot be empty")
	}
	if edge.Target == "" {
		return checklist.NewValidationError("Relationships", "relationship target cannot be empty")
	}
	builder.edges = append(builder.edges, edge)
	return nil
}

// parseFieldBullet handles a `- **Field**: value` bullet outside the
// Instructions and Relationships blocks. Unrecognized bullets and bullets
// missing the colon separator are warnings, not failures.
func parseFieldBullet(line string, builder *itemBuilder) {
	colon := strings.Index(line, ":")
	if colon < 0 {
		slog.Warn("bullet missing ':' separator in markdown", "line", line)
		return
	}
	value := strings.TrimSpace(line[colon+1:])

	switch {
	case hasBulletField(line, "action"):
		builder.action = value
	case hasBulletField(line, "spec"):
		builder.spec = value
	case hasBulletField(line, "result"):
		builder.result = value
	case hasBulletField(line, "status"):
		builder.status = value
	case hasBulletField(line, "comment"):
		builder.comment = value
	case hasBulletField(line, "timestamp"):
		builder.timestamp = value
	default:
		slog.Warn("unrecognized bullet in markdown", "line", line)
	}
}

// hasBulletField reports whether line starts with `- **<field>**`,
// case-insensitively.
func hasBulletField(line, field string) bool {
	return strings.HasPrefix(strings.ToLower(line), "- **"+field+"**")
}

// finalizeItem validates a completed item and converts it into a slug with
// its computed address ID.
func finalizeItem(checklistName string, builder *itemBuilder) (checklist.Slug, error) {
	switch {
	case builder.section == "":
		return checklist.Slug{}, checklist.NewValidationError("Section",
			"section (H1) is required before procedures")
	case builder.procedure == "":
		return checklist.Slug{}, checklist.NewValidationError("Procedure",
			"procedure (H2) is required")
	case builder.action == "":
		return checklist.Slug{}, checklist.NewValidationError("Action",
			fmt.Sprintf("action is required for procedure %q", builder.procedure))
	case builder.spec == "":
		return checklist.Slug{}, checklist.NewValidationError("Spec",
			fmt.Sprintf("spec is required for procedure %q", builder.procedure))
	case builder.status == "":
		return checklist.Slug{}, checklist.NewValidationError("Status",
			fmt.Sprintf("status is required for procedure %q", builder.procedure))
	}

	status := checklist.ParseStatus(builder.status)
	if status == checklist.StatusUnknown {
		return checklist.Slug{}, checklist.NewValidationError("Status",
			fmt.Sprintf("status must be Pass, Fail, NA, or Other, got %q", builder.status))
	}

	slug := checklist.Slug{
		Checklist:     checklistName,
		Section:       builder.section,
		Procedure:     builder.procedure,
		Action:        builder.action,
		Spec:          builder.spec,
		Result:        builder.result,
		Status:        status,
		Comment:       builder.comment,
		Timestamp:     builder.timestamp,
		Instructions:  strings.TrimRight(builder.instructions.String(), "\n"),
		Relationships: builder.edges,
	}
	slug.AddressID = ident.AddressID(
		slug.Checklist, slug.Section, slug.Procedure, slug.Action, slug.Spec)

	if builder.idHint != "" && builder.idHint != slug.AddressID {
		return checklist.Slug{}, &checklist.ValidationError{
			Field:    "Checklist ID",
			Message:  fmt.Sprintf("checklist ID mismatch for procedure %q", slug.Procedure),
			Expected: slug.AddressID,
			Found:    builder.idHint,
		}
	}

	return slug, nil
}
