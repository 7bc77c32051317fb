package mcpservice_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/ggoodman/mcp-discovery-go/catalog"
	"github.com/ggoodman/mcp-discovery-go/internal/jsonrpc"
	"github.com/ggoodman/mcp-discovery-go/mcp"
	"github.com/ggoodman/mcp-discovery-go/mcpservice"
)

func TestDispatchBareMatchesEnvelopedResult(t *testing.T) {
	d := mustDispatcher(t, catalog.Default())

	for i, ep := range mcpservice.Endpoints() {
		t.Run(string(ep), func(t *testing.T) {
			bare := d.Dispatch(t.Context(), ep, false, nil)
			if want, got := http.StatusOK, bare.Status; want != got {
				t.Fatalf("unexpected status: want %d got %d", want, got)
			}
			bareBytes := mustMarshal(t, bare.Body)

			var fields map[string]json.RawMessage
			mustUnmarshalJSON(t, bareBytes, &fields)
			for _, k := range []string{"jsonrpc", "id", "result", "error"} {
				if _, ok := fields[k]; ok {
					t.Fatalf("bare payload must not carry %q: %s", k, bareBytes)
				}
			}

			rpcID := int32(i + 1)
			env := d.Dispatch(t.Context(), ep, true, envelope(ep.Method(), rpcID))
			if want, got := http.StatusOK, env.Status; want != got {
				t.Fatalf("unexpected status: want %d got %d", want, got)
			}
			res := decodeResponse(t, env.Body)
			if res.Error != nil {
				t.Fatalf("unexpected error: %+v", res.Error)
			}
			if want, got := fmt.Sprint(rpcID), res.ID.String(); want != got {
				t.Fatalf("unexpected id: want %s got %s", want, got)
			}
			if !bytes.Equal(bareBytes, res.Result) {
				t.Fatalf("bare and enveloped payloads differ:\nbare %s\nrpc  %s", bareBytes, res.Result)
			}
		})
	}
}

func TestDispatchResultsMatchRegistry(t *testing.T) {
	reg := catalog.Default()
	d := mustDispatcher(t, reg)

	tests := []struct {
		endpoint mcpservice.Endpoint
		want     any
	}{
		{mcpservice.EndpointMCP, reg.Manifest()},
		{mcpservice.EndpointResourcesRead, mcp.ListResourcesResult{Resources: reg.Resources()}},
		{mcpservice.EndpointToolsList, mcp.ListToolsResult{Tools: reg.Tools()}},
		{mcpservice.EndpointTools, mcp.ListToolsResult{Tools: reg.Tools()}},
	}

	for _, tt := range tests {
		t.Run(string(tt.endpoint), func(t *testing.T) {
			reply := d.Dispatch(t.Context(), tt.endpoint, true, envelope(tt.endpoint.Method(), 42))
			res := decodeResponse(t, reply.Body)
			if want, got := string(mustMarshal(t, tt.want)), string(res.Result); want != got {
				t.Fatalf("unexpected result:\nwant %s\ngot  %s", want, got)
			}
		})
	}
}

func TestDispatchToolsListScenario(t *testing.T) {
	d := mustDispatcher(t, catalog.Default())

	reply := d.Dispatch(t.Context(), mcpservice.EndpointToolsList, true, []byte(`{"jsonrpc":"2.0","method":"tools/list","id":7}`))
	if want, got := http.StatusOK, reply.Status; want != got {
		t.Fatalf("unexpected status: want %d got %d", want, got)
	}
	want := `{"jsonrpc":"2.0","result":{"tools":[{"name":"query_oil_wells_seismic","description":"Query oil wells with seismic data",` +
		`"inputSchema":{"type":"object","properties":{"filter":{"type":"string","description":"Optional filter, e.g., 'has_seismic_data=true'"}},"required":[]}}]},"id":7}`
	if got := string(mustMarshal(t, reply.Body)); want != got {
		t.Fatalf("unexpected body:\nwant %s\ngot  %s", want, got)
	}
}

func TestDispatchErrors(t *testing.T) {
	d := mustDispatcher(t, catalog.Default())

	tests := []struct {
		name     string
		endpoint mcpservice.Endpoint
		body     string
		wantCode jsonrpc.ErrorCode
		wantID   string // "" means null
	}{
		{name: "old jsonrpc version", endpoint: mcpservice.EndpointMCP, body: `{"jsonrpc":"1.0","method":"mcp","id":3}`, wantCode: jsonrpc.ErrorCodeInvalidRequest, wantID: "3"},
		{name: "missing jsonrpc version", endpoint: mcpservice.EndpointMCP, body: `{"method":"mcp","id":3}`, wantCode: jsonrpc.ErrorCodeInvalidRequest, wantID: "3"},
		{name: "cross-called method", endpoint: mcpservice.EndpointMCP, body: `{"jsonrpc":"2.0","method":"tools/list","id":4}`, wantCode: jsonrpc.ErrorCodeInvalidRequest, wantID: "4"},
		{name: "synonym route is method-bound", endpoint: mcpservice.EndpointTools, body: `{"jsonrpc":"2.0","method":"tools/list","id":5}`, wantCode: jsonrpc.ErrorCodeInvalidRequest, wantID: "5"},
		{name: "missing method", endpoint: mcpservice.EndpointResourcesRead, body: `{"jsonrpc":"2.0","id":6}`, wantCode: jsonrpc.ErrorCodeInvalidRequest, wantID: "6"},
		{name: "missing id", endpoint: mcpservice.EndpointToolsList, body: `{"jsonrpc":"2.0","method":"tools/list"}`, wantCode: jsonrpc.ErrorCodeInvalidRequest},
		{name: "unparseable body", endpoint: mcpservice.EndpointToolsList, body: `{"jsonrpc":`, wantCode: jsonrpc.ErrorCodeInternalError},
		{name: "empty body", endpoint: mcpservice.EndpointMCP, body: ``, wantCode: jsonrpc.ErrorCodeInternalError},
		{name: "batch array", endpoint: mcpservice.EndpointMCP, body: `[{"jsonrpc":"2.0","method":"mcp","id":1}]`, wantCode: jsonrpc.ErrorCodeInternalError},
		{name: "string id", endpoint: mcpservice.EndpointMCP, body: `{"jsonrpc":"2.0","method":"mcp","id":"abc"}`, wantCode: jsonrpc.ErrorCodeInternalError},
		{name: "numeric method", endpoint: mcpservice.EndpointMCP, body: `{"jsonrpc":"2.0","method":1,"id":1}`, wantCode: jsonrpc.ErrorCodeInternalError},
		{name: "unknown endpoint keeps id", endpoint: mcpservice.Endpoint("prompts/list"), body: `{"jsonrpc":"2.0","method":"prompts/list","id":9}`, wantCode: jsonrpc.ErrorCodeInternalError, wantID: "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := d.Dispatch(t.Context(), tt.endpoint, true, []byte(tt.body))
			if want, got := http.StatusBadRequest, reply.Status; want != got {
				t.Fatalf("unexpected status: want %d got %d", want, got)
			}
			raw := mustMarshal(t, reply.Body)
			res := decodeResponse(t, reply.Body)
			if res.Error == nil {
				t.Fatalf("expected error response, got %s", raw)
			}
			if res.Result != nil {
				t.Fatalf("error response must not carry a result: %s", raw)
			}
			if want, got := tt.wantCode, res.Error.Code; want != got {
				t.Fatalf("unexpected code: want %d got %d", want, got)
			}
			if tt.wantID == "" {
				if !bytes.Contains(raw, []byte(`"id":null`)) {
					t.Fatalf("expected null id, got %s", raw)
				}
				return
			}
			if want, got := tt.wantID, res.ID.String(); want != got {
				t.Fatalf("unexpected id: want %s got %s", want, got)
			}
		})
	}
}

func TestDispatchErrorMessages(t *testing.T) {
	d := mustDispatcher(t, catalog.Default())

	invalid := d.Dispatch(t.Context(), mcpservice.EndpointMCP, true, envelope("tools", 1))
	if want, got := `{"jsonrpc":"2.0","error":{"code":-32600,"message":"Invalid Request"},"id":1}`, string(mustMarshal(t, invalid.Body)); want != got {
		t.Fatalf("unexpected body:\nwant %s\ngot  %s", want, got)
	}

	internal := d.Dispatch(t.Context(), mcpservice.EndpointMCP, true, []byte("not json"))
	if want, got := `{"jsonrpc":"2.0","error":{"code":-32603,"message":"Internal error"},"id":null}`, string(mustMarshal(t, internal.Body)); want != got {
		t.Fatalf("unexpected body:\nwant %s\ngot  %s", want, got)
	}
}

func TestDispatchBareUnknownEndpoint(t *testing.T) {
	d := mustDispatcher(t, catalog.Default())

	reply := d.Dispatch(t.Context(), mcpservice.Endpoint("nope"), false, nil)
	if want, got := http.StatusBadRequest, reply.Status; want != got {
		t.Fatalf("unexpected status: want %d got %d", want, got)
	}
	res := decodeResponse(t, reply.Body)
	if res.Error == nil || res.Error.Code != jsonrpc.ErrorCodeInternalError {
		t.Fatalf("expected internal error, got %+v", res.Error)
	}
}

func TestDispatchIsIdempotent(t *testing.T) {
	d := mustDispatcher(t, catalog.Default())

	for _, ep := range mcpservice.Endpoints() {
		for _, enveloped := range []bool{false, true} {
			first := mustMarshal(t, d.Dispatch(t.Context(), ep, enveloped, envelope(ep.Method(), 1)).Body)
			for range 5 {
				again := mustMarshal(t, d.Dispatch(t.Context(), ep, enveloped, envelope(ep.Method(), 1)).Body)
				if !bytes.Equal(first, again) {
					t.Fatalf("%s (enveloped=%v) not idempotent:\nfirst %s\nagain %s", ep, enveloped, first, again)
				}
			}
		}
	}
}

func TestDispatchConcurrent(t *testing.T) {
	d := mustDispatcher(t, catalog.Default())
	want := mustMarshal(t, d.Dispatch(context.Background(), mcpservice.EndpointTools, true, envelope("tools", 1)).Body)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply := d.Dispatch(context.Background(), mcpservice.EndpointTools, true, envelope("tools", 1))
			got, err := json.Marshal(reply.Body)
			if err != nil {
				errs <- err.Error()
				return
			}
			if !bytes.Equal(want, got) {
				errs <- string(got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatalf("concurrent dispatch diverged: %s", e)
	}
}

func TestDispatchAlternateCatalog(t *testing.T) {
	reg, err := catalog.New(
		mcp.CapabilityManifest{Protocol: "mcp", Version: "2.0", Capabilities: []string{"inventory", "search"}},
		[]mcp.Resource{{ID: "data:logs", Type: mcp.ResourceTypeData, Name: "Logs", Description: "Log lines"}},
		nil,
	)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	d := mustDispatcher(t, reg)

	reply := d.Dispatch(t.Context(), mcpservice.EndpointMCP, false, nil)
	if want, got := `{"protocol":"mcp","version":"2.0","capabilities":["inventory","search"]}`, string(mustMarshal(t, reply.Body)); want != got {
		t.Fatalf("unexpected manifest:\nwant %s\ngot  %s", want, got)
	}

	reply = d.Dispatch(t.Context(), mcpservice.EndpointToolsList, false, nil)
	if want, got := `{"tools":[]}`, string(mustMarshal(t, reply.Body)); want != got {
		t.Fatalf("unexpected tools:\nwant %s\ngot  %s", want, got)
	}
}

func TestDispatchLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d := mustDispatcher(t, catalog.Default(), mcpservice.WithLogger(log))

	d.Dispatch(t.Context(), mcpservice.EndpointMCP, true, []byte("{"))
	if !strings.Contains(buf.String(), "jsonrpc.decode.fail") {
		t.Fatalf("expected decode failure to be logged, got %s", buf.String())
	}

	buf.Reset()
	d.Dispatch(t.Context(), mcpservice.EndpointMCP, true, envelope("tools", 1))
	if !strings.Contains(buf.String(), "jsonrpc.request.invalid") {
		t.Fatalf("expected invalid request to be logged, got %s", buf.String())
	}
}

func TestNewDispatcherRequiresRegistry(t *testing.T) {
	if _, err := mcpservice.NewDispatcher(nil); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}

func TestNewDispatcherRejectsTypedNilRegistry(t *testing.T) {
	var reg *catalog.Registry
	if _, err := mcpservice.NewDispatcher(reg); err == nil {
		t.Fatalf("expected error for nil *catalog.Registry")
	}
}

// faultingCatalog panics when tools are listed.
type faultingCatalog struct{ *catalog.Registry }

func (faultingCatalog) Tools() []mcp.Tool { panic("tool index corrupted") }

func TestDispatchRecoversFromCatalogPanic(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	d := mustDispatcher(t, faultingCatalog{catalog.Default()}, mcpservice.WithLogger(log))

	t.Run("enveloped echoes id", func(t *testing.T) {
		reply := d.Dispatch(t.Context(), mcpservice.EndpointToolsList, true, envelope("tools/list", 11))
		if want, got := http.StatusBadRequest, reply.Status; want != got {
			t.Fatalf("unexpected status: want %d got %d", want, got)
		}
		if want, got := `{"jsonrpc":"2.0","error":{"code":-32603,"message":"Internal error"},"id":11}`, string(mustMarshal(t, reply.Body)); want != got {
			t.Fatalf("unexpected body:\nwant %s\ngot  %s", want, got)
		}
	})

	t.Run("bare has null id", func(t *testing.T) {
		reply := d.Dispatch(t.Context(), mcpservice.EndpointTools, false, nil)
		if want, got := http.StatusBadRequest, reply.Status; want != got {
			t.Fatalf("unexpected status: want %d got %d", want, got)
		}
		if want, got := `{"jsonrpc":"2.0","error":{"code":-32603,"message":"Internal error"},"id":null}`, string(mustMarshal(t, reply.Body)); want != got {
			t.Fatalf("unexpected body:\nwant %s\ngot  %s", want, got)
		}
	})

	t.Run("other endpoints unaffected", func(t *testing.T) {
		reply := d.Dispatch(t.Context(), mcpservice.EndpointResourcesRead, true, envelope("resources/read", 12))
		if want, got := http.StatusOK, reply.Status; want != got {
			t.Fatalf("unexpected status: want %d got %d", want, got)
		}
	})

	if !strings.Contains(buf.String(), `"msg":"dispatch.panic"`) {
		t.Fatalf("expected dispatch.panic log record, got %s", buf.String())
	}
}

func TestEndpoints(t *testing.T) {
	want := []string{"/mcp", "/resources/read", "/tools/list", "/tools"}
	eps := mcpservice.Endpoints()
	if len(eps) != len(want) {
		t.Fatalf("unexpected endpoint count: want %d got %d", len(want), len(eps))
	}
	for i, ep := range eps {
		if got := ep.Path(); got != want[i] {
			t.Fatalf("unexpected path: want %s got %s", want[i], got)
		}
		if !ep.IsValid() {
			t.Fatalf("endpoint %s reported invalid", ep)
		}
	}
	if mcpservice.Endpoint("tools/call").IsValid() {
		t.Fatalf("tools/call must not be a discovery endpoint")
	}
}

func mustDispatcher(t *testing.T, reg mcpservice.Catalog, opts ...mcpservice.Option) *mcpservice.Dispatcher {
	t.Helper()
	d, err := mcpservice.NewDispatcher(reg, opts...)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func envelope(method string, id int32) []byte {
	b, _ := json.Marshal(&jsonrpc.Request{
		JSONRPCVersion: jsonrpc.ProtocolVersion,
		Method:         method,
		ID:             jsonrpc.NewRequestID(id),
	})
	return b
}

func decodeResponse(t *testing.T, body any) jsonrpc.Response {
	t.Helper()
	var res jsonrpc.Response
	mustUnmarshalJSON(t, mustMarshal(t, body), &res)
	return res
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func mustUnmarshalJSON(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("failed to unmarshal JSON %s: %v", data, err)
	}
}
