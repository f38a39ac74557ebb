package mcp

import "encoding/json"

// Protocol constants.
const (
	// ProtocolVersion is the MCP protocol revision this server speaks.
	ProtocolVersion = "2024-11-05"

	// notificationPrefix marks methods that never receive a response.
	notificationPrefix = "notifications/"

	// dispatchErrorCode is the JSON-RPC error code for every per-request
	// failure: unknown method, unknown tool, or a handler error.
	dispatchErrorCode = -32000
)

// fallbackID is echoed when a request carries no id at all.
var fallbackID = json.RawMessage("1")

// rpcRequest is the inbound JSON-RPC envelope. The id is kept raw so it is
// echoed back unchanged whatever its JSON type.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// rpcError is the error member of a response.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcResponse is the outbound JSON-RPC envelope. Exactly one of Result and
// Error is set.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// callToolParams are the params of a tools/call request.
type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}
