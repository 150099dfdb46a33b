package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	serverName    = "punchlist-mcp-bridge"
	serverVersion = "0.2.0"

	// JSON-RPC error codes used by the bridge.
	codeToolError      = -32000
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type toolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type capabilities struct {
	Tools toolsCapability `json:"tools"`
}

type initializeResult struct {
	ServerInfo   serverInfo   `json:"serverInfo"`
	Capabilities capabilities `json:"capabilities"`
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callToolResult struct {
	Content []toolContent `json:"content"`
}

// Bridge proxies MCP tool calls to the HTTP API at baseURL.
type Bridge struct {
	baseURL string
	client  *http.Client
	in      *bufio.Reader
	out     io.Writer
}

// New returns a Bridge reading MCP messages from in and writing to out.
func New(baseURL string, in io.Reader, out io.Writer) *Bridge {
	return &Bridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// Run processes messages until the host sends exit, the input closes, or
// ctx is cancelled. A host that disconnects after initialize without a
// shutdown gets a final protocol error on the way out.
func (b *Bridge) Run(ctx context.Context) error {
	initialized := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := b.readMessage()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}

		switch req.Method {
		case "initialize":
			initialized = true
			b.writeResult(req.ID, initializeResult{
				ServerInfo:   serverInfo{Name: serverName, Version: serverVersion},
				Capabilities: capabilities{Tools: toolsCapability{ListChanged: false}},
			})

		case "shutdown":
			initialized = false
			b.writeResult(req.ID, struct{}{})

		case "tools/list":
			b.writeResult(req.ID, map[string]any{"tools": toolSchemas()})

		case "tools/call":
			b.handleToolCall(ctx, req)

		case "ping":
			b.writeResult(req.ID, struct{}{})

		case "exit":
			return nil

		case "":
			// Keep-alive noise; ignore.

		default:
			b.writeError(req.ID, codeMethodNotFound, "Unsupported method: "+req.Method)
		}
	}

	if initialized {
		b.writeError(nil, codeToolError, "MCP host terminated without shutdown.")
	}
	return nil
}

func (b *Bridge) handleToolCall(ctx context.Context, req request) {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		b.writeError(req.ID, codeInvalidParams, "Invalid params")
		return
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	text, err := b.callTool(ctx, params.Name, params.Arguments)
	if err != nil {
		b.writeError(req.ID, codeToolError, err.Error())
		return
	}
	b.writeResult(req.ID, callToolResult{
		Content: []toolContent{{Type: "text", Text: text}},
	})
}

// readMessage reads one Content-Length framed JSON-RPC message. io.EOF
// means the host went away cleanly.
func (b *Bridge) readMessage() (request, error) {
	contentLength := 0

	for {
		line, err := b.in.ReadString('\n')
		if err != nil {
			if err == io.EOF && strings.TrimSpace(line) == "" {
				return request{}, io.EOF
			}
			if err == io.EOF {
				break
			}
			return request{}, fmt.Errorf("read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return request{}, fmt.Errorf("bad Content-Length %q: %w", value, err)
			}
			contentLength = n
		}
	}

	if contentLength <= 0 {
		return request{}, io.EOF
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(b.in, body); err != nil {
		return request{}, io.EOF
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		return request{}, io.EOF
	}
	return req, nil
}

func (b *Bridge) writeResult(id, result any) {
	b.writeMessage(response{JSONRPC: "2.0", ID: id, Result: result})
}

func (b *Bridge) writeError(id any, code int, message string) {
	b.writeMessage(response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (b *Bridge) writeMessage(resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("marshal mcp response", "error", err)
		return
	}
	if _, err := fmt.Fprintf(b.out, "Content-Length: %d\r\n\r\n%s", len(data), data); err != nil {
		slog.Error("write mcp response", "error", err)
	}
}
