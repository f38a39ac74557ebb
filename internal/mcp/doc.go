// Package mcp implements the stdio request/response loop of the server.
//
// The protocol is line-delimited JSON-RPC 2.0: one request object per input
// line, one response object per output line, flushed immediately. Stdout
// carries only protocol traffic; all logging goes elsewhere.
//
// The loop is deliberately hand-rolled rather than delegated to an MCP
// framework server, because its failure behavior is part of the contract:
//
//   - End of input is a clean shutdown, not an error.
//   - Unparsable lines are logged and dropped without a response.
//   - Notifications (method prefixed "notifications/") are consumed silently.
//   - Any failure while handling a known method becomes a structured error
//     response with code -32000; the loop itself never dies on a request.
//
// Result payloads use the MCP data types from mark3labs/mcp-go so the wire
// format matches what MCP clients expect.
package mcp
