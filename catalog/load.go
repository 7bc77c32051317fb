package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ggoodman/mcp-discovery-go/mcp"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a catalog file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath infers a catalog format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported catalog file extension %q", filepath.Ext(path))
	}
}

// Load reads and validates a catalog file. The format is inferred from the
// file extension.
func Load(path string) (*Registry, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	reg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes and validates a catalog document. A document that omits the
// manifest protocol or version gets the built-in values.
//
// The document shape and its keys are the same in every format; keys follow
// the wire names (inputSchema), e.g. in YAML:
//
//	manifest:
//	  capabilities: [inventory]
//	resources:
//	  - id: data:oil_wells
//	    type: data
//	    name: Oil Wells
//	    description: Oil wells dataset
//	tools:
//	  - name: query_oil_wells_seismic
//	    description: Query oil wells with seismic data
//	    inputSchema:
//	      type: object
//	      properties:
//	        filter: {type: string, description: Optional filter}
func Parse(data []byte, format Format) (*Registry, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	return doc.registry()
}

type document struct {
	Manifest  documentManifest   `yaml:"manifest" toml:"manifest" json:"manifest"`
	Resources []documentResource `yaml:"resources" toml:"resources" json:"resources"`
	Tools     []documentTool     `yaml:"tools" toml:"tools" json:"tools"`
}

type documentManifest struct {
	Protocol     string   `yaml:"protocol" toml:"protocol" json:"protocol"`
	Version      string   `yaml:"version" toml:"version" json:"version"`
	Capabilities []string `yaml:"capabilities" toml:"capabilities" json:"capabilities"`
}

type documentResource struct {
	ID          string `yaml:"id" toml:"id" json:"id"`
	Type        string `yaml:"type" toml:"type" json:"type"`
	Name        string `yaml:"name" toml:"name" json:"name"`
	Description string `yaml:"description" toml:"description" json:"description"`
}

type documentTool struct {
	Name        string         `yaml:"name" toml:"name" json:"name"`
	Description string         `yaml:"description" toml:"description" json:"description"`
	InputSchema documentSchema `yaml:"inputSchema" toml:"inputSchema" json:"inputSchema"`
}

type documentSchema struct {
	Type       string                      `yaml:"type" toml:"type" json:"type"`
	Properties map[string]documentProperty `yaml:"properties" toml:"properties" json:"properties"`
	Required   []string                    `yaml:"required" toml:"required" json:"required"`
}

type documentProperty struct {
	Type        string                      `yaml:"type" toml:"type" json:"type"`
	Description string                      `yaml:"description" toml:"description" json:"description"`
	Items       *documentProperty           `yaml:"items" toml:"items" json:"items"`
	Properties  map[string]documentProperty `yaml:"properties" toml:"properties" json:"properties"`
	Enum        []any                       `yaml:"enum" toml:"enum" json:"enum"`
}

func (d document) registry() (*Registry, error) {
	manifest := mcp.CapabilityManifest{
		Protocol:     d.Manifest.Protocol,
		Version:      d.Manifest.Version,
		Capabilities: d.Manifest.Capabilities,
	}
	if manifest.Protocol == "" {
		manifest.Protocol = mcp.ProtocolName
	}
	if manifest.Version == "" {
		manifest.Version = mcp.ProtocolVersion
	}

	resources := make([]mcp.Resource, 0, len(d.Resources))
	for _, r := range d.Resources {
		resources = append(resources, mcp.Resource{
			ID:          r.ID,
			Type:        mcp.ResourceType(r.Type),
			Name:        r.Name,
			Description: r.Description,
		})
	}

	tools := make([]mcp.Tool, 0, len(d.Tools))
	for _, t := range d.Tools {
		schemaType := t.InputSchema.Type
		if schemaType == "" {
			schemaType = "object"
		}
		tools = append(tools, mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: mcp.ToolInputSchema{
				Type:       schemaType,
				Properties: toSchemaProperties(t.InputSchema.Properties),
				Required:   t.InputSchema.Required,
			},
		})
	}

	return New(manifest, resources, tools)
}

func toSchemaProperties(in map[string]documentProperty) map[string]mcp.SchemaProperty {
	if in == nil {
		return nil
	}
	out := make(map[string]mcp.SchemaProperty, len(in))
	for k, v := range in {
		out[k] = v.schemaProperty()
	}
	return out
}

func (p documentProperty) schemaProperty() mcp.SchemaProperty {
	sp := mcp.SchemaProperty{
		Type:        p.Type,
		Description: p.Description,
		Properties:  toSchemaProperties(p.Properties),
		Enum:        p.Enum,
	}
	if p.Items != nil {
		item := p.Items.schemaProperty()
		sp.Items = &item
	}
	return sp
}
