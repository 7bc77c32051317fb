package mcp

// Method is an MCP method identifier used in JSON-RPC messages.
type Method string

// MCP discovery method names. Each method is served on the route of the same
// name and only that route accepts it.
const (
	// Handshake
	HandshakeMethod Method = "mcp"

	// Resources
	ResourcesReadMethod Method = "resources/read"

	// Tools
	ToolsListMethod Method = "tools/list"
	ToolsMethod     Method = "tools"
)

// ListResourcesResult is the payload of resources/read.
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ListToolsResult is the payload of tools/list and tools.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}
