// Package mcpservice routes discovery calls to the capability registry and
// shapes the replies.
//
// A single Dispatcher entry point serves both call styles of every endpoint:
//
//   - bare discovery (HTTP GET): the registry payload is returned as-is
//   - JSON-RPC (HTTP POST): the body is decoded, validated against the
//     endpoint's method, and the payload is wrapped in a response envelope
//
// Quick start:
//
//	d, err := mcpservice.NewDispatcher(catalog.Default(), mcpservice.WithLogger(log))
//	if err != nil { ... }
//	reply := d.Dispatch(ctx, mcpservice.EndpointToolsList, true, []byte(`{"jsonrpc":"2.0","method":"tools/list","id":7}`))
//	// reply.Status == 200
//	// reply.Body marshals to {"jsonrpc":"2.0","result":{"tools":[...]},"id":7}
//
// Endpoints are method-bound: posting a tools/list envelope to the mcp
// endpoint is an Invalid Request even though the envelope is well formed.
package mcpservice
