package catalog

import (
	"errors"
	"fmt"

	"github.com/ggoodman/mcp-discovery-go/mcp"
)

// ErrInvalidCatalog is returned when a catalog fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Registry is an immutable catalog of the handshake manifest, readable
// resources and tools. It is safe for concurrent use without locking: inputs
// are copied at construction and every accessor returns a fresh copy.
type Registry struct {
	manifest  mcp.CapabilityManifest
	resources []mcp.Resource
	tools     []mcp.Tool
}

// New validates and builds a Registry. Slices and maps are copied so callers
// may retain ownership of their inputs.
func New(manifest mcp.CapabilityManifest, resources []mcp.Resource, tools []mcp.Tool) (*Registry, error) {
	if manifest.Protocol == "" {
		return nil, fmt.Errorf("%w: manifest protocol is required", ErrInvalidCatalog)
	}
	if manifest.Version == "" {
		return nil, fmt.Errorf("%w: manifest version is required", ErrInvalidCatalog)
	}

	seenRes := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: resource id is required", ErrInvalidCatalog)
		}
		if _, dup := seenRes[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate resource id %q", ErrInvalidCatalog, r.ID)
		}
		seenRes[r.ID] = struct{}{}
		if !mcp.IsValidResourceType(r.Type) {
			return nil, fmt.Errorf("%w: resource %q has unknown type %q", ErrInvalidCatalog, r.ID, r.Type)
		}
	}

	seenTools := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: tool name is required", ErrInvalidCatalog)
		}
		if _, dup := seenTools[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate tool name %q", ErrInvalidCatalog, t.Name)
		}
		seenTools[t.Name] = struct{}{}
		if err := validateInputSchema(t.InputSchema); err != nil {
			return nil, fmt.Errorf("%w: tool %q: %v", ErrInvalidCatalog, t.Name, err)
		}
	}

	reg := &Registry{
		manifest:  cloneManifest(manifest),
		resources: make([]mcp.Resource, len(resources)),
		tools:     make([]mcp.Tool, 0, len(tools)),
	}
	copy(reg.resources, resources)
	for _, t := range tools {
		reg.tools = append(reg.tools, cloneTool(t))
	}
	return reg, nil
}

// MustNew is like New but panics on an invalid catalog. It is meant for
// catalogs compiled into the binary.
func MustNew(manifest mcp.CapabilityManifest, resources []mcp.Resource, tools []mcp.Tool) *Registry {
	reg, err := New(manifest, resources, tools)
	if err != nil {
		panic(err)
	}
	return reg
}

// Manifest returns the handshake manifest.
func (r *Registry) Manifest() mcp.CapabilityManifest {
	return cloneManifest(r.manifest)
}

// Resources returns the readable resources in catalog order.
func (r *Registry) Resources() []mcp.Resource {
	out := make([]mcp.Resource, len(r.resources))
	copy(out, r.resources)
	return out
}

// Tools returns the tool descriptors in catalog order.
func (r *Registry) Tools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, cloneTool(t))
	}
	return out
}

func validateInputSchema(s mcp.ToolInputSchema) error {
	if s.Type != "object" {
		return fmt.Errorf("input schema type must be object, got %q", s.Type)
	}
	seen := make(map[string]struct{}, len(s.Required))
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; !ok {
			return fmt.Errorf("required property missing: %s", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate required property: %s", name)
		}
		seen[name] = struct{}{}
	}
	for name, p := range s.Properties {
		if p.Type == "" {
			return fmt.Errorf("property %s missing type", name)
		}
	}
	return nil
}

func cloneManifest(m mcp.CapabilityManifest) mcp.CapabilityManifest {
	caps := make([]string, len(m.Capabilities))
	copy(caps, m.Capabilities)
	m.Capabilities = caps
	return m
}

func cloneTool(t mcp.Tool) mcp.Tool {
	t.InputSchema.Properties = cloneProperties(t.InputSchema.Properties)
	if t.InputSchema.Properties == nil {
		t.InputSchema.Properties = map[string]mcp.SchemaProperty{}
	}
	required := make([]string, len(t.InputSchema.Required))
	copy(required, t.InputSchema.Required)
	t.InputSchema.Required = required
	return t
}

func cloneProperties(in map[string]mcp.SchemaProperty) map[string]mcp.SchemaProperty {
	if in == nil {
		return nil
	}
	out := make(map[string]mcp.SchemaProperty, len(in))
	for k, v := range in {
		out[k] = cloneProperty(v)
	}
	return out
}

func cloneProperty(p mcp.SchemaProperty) mcp.SchemaProperty {
	if p.Items != nil {
		item := cloneProperty(*p.Items)
		p.Items = &item
	}
	p.Properties = cloneProperties(p.Properties)
	if p.Enum != nil {
		enum := make([]any, len(p.Enum))
		copy(enum, p.Enum)
		p.Enum = enum
	}
	return p
}
