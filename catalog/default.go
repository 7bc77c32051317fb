package catalog

import "github.com/ggoodman/mcp-discovery-go/mcp"

// InventoryCapability is the single capability advertised by the built-in
// manifest.
const InventoryCapability = "inventory"

// QueryOilWellsSeismicTool is the name of the built-in seismic query tool.
const QueryOilWellsSeismicTool = "query_oil_wells_seismic"

// QueryOilWellsSeismicArgs is the input accepted by query_oil_wells_seismic.
type QueryOilWellsSeismicArgs struct {
	Filter string `json:"filter,omitempty" jsonschema_description:"Optional filter, e.g., 'has_seismic_data=true'"`
}

// Default returns the built-in catalog: an inventory handshake, one agent and
// one dataset resource, and the seismic query tool.
func Default() *Registry {
	return MustNew(
		mcp.CapabilityManifest{
			Protocol:     mcp.ProtocolName,
			Version:      mcp.ProtocolVersion,
			Capabilities: []string{InventoryCapability},
		},
		[]mcp.Resource{
			{
				ID:          "agent:model1",
				Type:        mcp.ResourceTypeAgent,
				Name:        "Phi-3-mini-4k-instruct",
				Description: "Agent for MCP interactions",
			},
			{
				ID:          "data:oil_wells",
				Type:        mcp.ResourceTypeData,
				Name:        "Oil Wells",
				Description: "Oil wells dataset",
			},
		},
		[]mcp.Tool{
			NewTool[QueryOilWellsSeismicArgs](
				QueryOilWellsSeismicTool,
				WithToolDescription("Query oil wells with seismic data"),
			),
		},
	)
}
