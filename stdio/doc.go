// Package stdio implements a minimal single-connection transport over
// stdin/stdout for the discovery endpoints. It is intended for embedding the
// server as a subprocess, local development, and environments where spawning
// a child process and piping JSON is simpler than running an HTTP server.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 client
//	Auth             : none
//	Framing          : newline-delimited JSON-RPC, one response per line
//	Routing          : by the envelope's method; unknown methods are Invalid Request
//
// Only the enveloped call style exists on this transport; there is no bare
// discovery form.
//
// Example:
//
//	d, _ := mcpservice.NewDispatcher(catalog.Default())
//	h := stdio.NewHandler(d)
//	if err := h.Serve(context.Background()); err != nil { log.Fatal(err) }
package stdio
