// Package bridge speaks MCP over stdio and proxies tool calls to the HTTP
// API.
//
// Messages are JSON-RPC 2.0 framed with Content-Length headers (LSP-style
// framing, not line-delimited). The bridge holds no store handle of its
// own; every tool call becomes an HTTP request against the configured base
// URL, and the response is rendered back to the MCP host as text content.
package bridge
