// Package mcp contains the wire types of the MCP discovery profile: the
// handshake manifest, resource and tool descriptors, and the list payloads
// returned by the discovery methods. The shapes mirror the JSON exchanged
// with clients (exported structs with json tags, string constants for method
// names and enumerations).
//
// The package is free of transport logic. The catalog package builds values
// of these types, the mcpservice dispatcher wraps them in JSON-RPC envelopes,
// and the mcphttp handler writes them to the wire.
//
// # Method Names
//
// Each discovery method is bound to the HTTP route of the same name:
//
//	mcp             -> CapabilityManifest
//	resources/read  -> ListResourcesResult
//	tools/list      -> ListToolsResult
//	tools           -> ListToolsResult
//
// Using the Method constants avoids typographical mistakes when building
// requests in clients and tests.
package mcp
