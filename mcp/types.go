package mcp

// Protocol identifiers advertised in the handshake manifest.
const (
	ProtocolName    = "mcp"
	ProtocolVersion = "1.0"
)

// Capabilities
// CapabilityManifest is the handshake payload describing the protocol the
// server speaks and the capabilities it offers.
type CapabilityManifest struct {
	Protocol     string   `json:"protocol"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

// Resources
// ResourceType classifies a readable resource.
type ResourceType string

const (
	ResourceTypeAgent ResourceType = "agent"
	ResourceTypeData  ResourceType = "data"
)

// IsValidResourceType reports whether t is one of the known resource types.
func IsValidResourceType(t ResourceType) bool {
	switch t {
	case ResourceTypeAgent, ResourceTypeData:
		return true
	default:
		return false
	}
}

// Resource describes a readable resource such as an agent or a dataset.
type Resource struct {
	ID          string       `json:"id"`
	Type        ResourceType `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
}

// Tools
// Tool describes a callable tool and its input schema.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema ToolInputSchema `json:"inputSchema"`
}

// ToolInputSchema is a JSON-schema-like description of tool input. Properties
// and Required are always serialized, even when empty.
type ToolInputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]SchemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

// SchemaProperty is a simplified schema node used in tool schemas.
type SchemaProperty struct {
	Type        string                    `json:"type,omitempty"`
	Description string                    `json:"description,omitzero"`
	Items       *SchemaProperty           `json:"items,omitempty"`
	Properties  map[string]SchemaProperty `json:"properties,omitempty"`
	Enum        []any                     `json:"enum,omitempty"`
}
