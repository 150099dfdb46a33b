package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// toolDefinition describes one MCP tool and the HTTP call it maps to.
type toolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func objectSchema(required []string, props map[string]any) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func toolSchemas() []toolDefinition {
	return []toolDefinition{
		{
			Name:        "punchlist.health",
			Description: "Check server readiness.",
			InputSchema: objectSchema(nil, map[string]any{}),
		},
		{
			Name:        "punchlist.list_checklists",
			Description: "List every checklist held by the server.",
			InputSchema: objectSchema(nil, map[string]any{}),
		},
		{
			Name:        "punchlist.get_slugs",
			Description: "List all slugs of one checklist.",
			InputSchema: objectSchema([]string{"checklist"}, map[string]any{
				"checklist": stringProp("Checklist name."),
			}),
		},
		{
			Name:        "punchlist.get_slug",
			Description: "Fetch one slug by its address ID.",
			InputSchema: objectSchema([]string{"address_id"}, map[string]any{
				"address_id": stringProp("16-character slug address ID."),
			}),
		},
		{
			Name:        "punchlist.get_relationships",
			Description: "Fetch the outgoing and incoming edges of one slug.",
			InputSchema: objectSchema([]string{"address_id"}, map[string]any{
				"address_id": stringProp("16-character slug address ID."),
			}),
		},
		{
			Name:        "punchlist.update_slug",
			Description: "Patch a slug's result, status, comment, or timestamp.",
			InputSchema: objectSchema([]string{"address_id"}, map[string]any{
				"address_id": stringProp("16-character slug address ID."),
				"result":     stringProp("Observed outcome."),
				"status":     stringProp("Pass, Fail, NA, or Other."),
				"comment":    stringProp("Free-form note."),
				"timestamp":  stringProp("ISO-8601 UTC timestamp; omit to stamp now."),
			}),
		},
		{
			Name:        "punchlist.export_markdown",
			Description: "Export one checklist as a markdown document.",
			InputSchema: objectSchema([]string{"checklist"}, map[string]any{
				"checklist": stringProp("Checklist name."),
			}),
		},
		{
			Name:        "punchlist.import_markdown",
			Description: "Replace one checklist from a markdown document.",
			InputSchema: objectSchema([]string{"checklist", "document"}, map[string]any{
				"checklist": stringProp("Checklist name."),
				"document":  stringProp("Full markdown document."),
			}),
		},
	}
}

// callTool dispatches one tool invocation to the HTTP API and returns the
// response rendered for display.
func (b *Bridge) callTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "punchlist.health":
		return b.get(ctx, "/api/health")

	case "punchlist.list_checklists":
		return b.get(ctx, "/api/checklists")

	case "punchlist.get_slugs":
		checklist, err := requireString(args, "checklist", name)
		if err != nil {
			return "", err
		}
		return b.get(ctx, "/api/checklists/"+url.PathEscape(checklist)+"/slugs")

	case "punchlist.get_slug":
		id, err := requireString(args, "address_id", name)
		if err != nil {
			return "", err
		}
		return b.get(ctx, "/api/slugs/"+url.PathEscape(id))

	case "punchlist.get_relationships":
		id, err := requireString(args, "address_id", name)
		if err != nil {
			return "", err
		}
		return b.get(ctx, "/api/slugs/"+url.PathEscape(id)+"/relationships")

	case "punchlist.update_slug":
		id, err := requireString(args, "address_id", name)
		if err != nil {
			return "", err
		}
		patch := map[string]any{}
		for _, field := range []string{"result", "status", "comment", "timestamp"} {
			if value, ok := args[field]; ok {
				patch[field] = toString(value)
			}
		}
		body, err := json.Marshal(patch)
		if err != nil {
			return "", fmt.Errorf("marshal patch: %w", err)
		}
		return b.do(ctx, http.MethodPatch, "/api/slugs/"+url.PathEscape(id),
			"application/json", bytes.NewReader(body))

	case "punchlist.export_markdown":
		checklist, err := requireString(args, "checklist", name)
		if err != nil {
			return "", err
		}
		return b.get(ctx, "/api/checklists/"+url.PathEscape(checklist)+"/export")

	case "punchlist.import_markdown":
		checklist, err := requireString(args, "checklist", name)
		if err != nil {
			return "", err
		}
		document, err := requireString(args, "document", name)
		if err != nil {
			return "", err
		}
		return b.do(ctx, http.MethodPost, "/api/checklists/"+url.PathEscape(checklist)+"/import",
			"text/markdown", strings.NewReader(document))
	}

	return "", fmt.Errorf("Unknown tool: %s", name)
}

func (b *Bridge) get(ctx context.Context, path string) (string, error) {
	return b.do(ctx, http.MethodGet, path, "", nil)
}

func (b *Bridge) do(ctx context.Context, method, path, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return formatResponse(resp.StatusCode, resp.Header.Get("Content-Type"), payload), nil
}

// formatResponse renders an HTTP response as display text: a status line,
// then the body pretty-printed when it is JSON.
func formatResponse(status int, contentType string, body []byte) string {
	var out strings.Builder
	fmt.Fprintf(&out, "HTTP %d", status)
	if contentType != "" {
		fmt.Fprintf(&out, " (%s)", contentType)
	}
	out.WriteByte('\n')

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		out.Write(pretty.Bytes())
	} else {
		out.Write(body)
	}
	return out.String()
}

func requireString(args map[string]any, key, tool string) (string, error) {
	value, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s requires a %q argument", tool, key)
	}
	s := toString(value)
	if s == "" {
		return "", fmt.Errorf("%s requires a non-empty %q argument", tool, key)
	}
	return s, nil
}

// toString renders non-string argument values as compact JSON, mirroring
// how hosts sometimes pass numbers or objects where strings are expected.
func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	if value == nil {
		return ""
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
