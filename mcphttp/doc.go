// Package mcphttp exposes a mcpservice.Dispatcher over HTTP.
//
// Every discovery endpoint is mounted at its own path and accepts two verbs:
//
//	GET  /tools/list   -> {"tools":[...]}
//	POST /tools/list   -> {"jsonrpc":"2.0","result":{"tools":[...]},"id":7}
//
// The handler does no interpretation of its own beyond transport concerns:
// a bounded body read, a Content-Type check for POST, request-scoped log
// attributes and a panic boundary. Status codes and bodies come from the
// Dispatcher.
//
// Typical usage:
//
//	d, _ := mcpservice.NewDispatcher(catalog.Default())
//	h, err := mcphttp.New(d, mcphttp.WithLogger(log))
//	if err != nil { ... }
//	http.ListenAndServe(":8080", h)
package mcphttp
