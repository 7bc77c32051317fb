package mcpservice

import "github.com/ggoodman/mcp-discovery-go/mcp"

// Endpoint names a discovery route. Each endpoint accepts exactly one
// JSON-RPC method, spelled the same as the route.
type Endpoint string

const (
	EndpointMCP           = Endpoint(mcp.HandshakeMethod)
	EndpointResourcesRead = Endpoint(mcp.ResourcesReadMethod)
	EndpointToolsList     = Endpoint(mcp.ToolsListMethod)
	EndpointTools         = Endpoint(mcp.ToolsMethod)
)

// Endpoints returns every discovery endpoint in routing order.
func Endpoints() []Endpoint {
	return []Endpoint{EndpointMCP, EndpointResourcesRead, EndpointToolsList, EndpointTools}
}

// Method returns the only JSON-RPC method accepted on this endpoint.
func (e Endpoint) Method() string { return string(e) }

// Path returns the HTTP path of the endpoint relative to the server root.
func (e Endpoint) Path() string { return "/" + string(e) }

// IsValid reports whether e is a known discovery endpoint.
func (e Endpoint) IsValid() bool {
	switch e {
	case EndpointMCP, EndpointResourcesRead, EndpointToolsList, EndpointTools:
		return true
	default:
		return false
	}
}
