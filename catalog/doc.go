// Package catalog holds the capability registry served by the discovery
// endpoints: the handshake manifest, the readable resources and the tool
// descriptors.
//
// A Registry is constructed once at startup and never mutated afterwards, so
// it can be shared by any number of concurrent requests without locking.
// Default returns the catalog compiled into the binary; Load and Parse read
// an alternate catalog from a YAML, TOML or JSON document so deployments and
// tests can substitute their own data.
//
// Tool input schemas can be written by hand or reflected from a Go struct:
//
//	type SearchArgs struct {
//	    Query string `json:"query" jsonschema_description:"Free text query"`
//	    Limit int    `json:"limit,omitempty"`
//	}
//
//	reg, err := catalog.New(
//	    mcp.CapabilityManifest{Protocol: mcp.ProtocolName, Version: mcp.ProtocolVersion},
//	    nil,
//	    []mcp.Tool{catalog.NewTool[SearchArgs]("search", catalog.WithToolDescription("Search things"))},
//	)
package catalog
