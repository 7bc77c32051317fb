package mcpservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/ggoodman/mcp-discovery-go/catalog"
	"github.com/ggoodman/mcp-discovery-go/internal/jsonrpc"
	"github.com/ggoodman/mcp-discovery-go/internal/logctx"
	"github.com/ggoodman/mcp-discovery-go/internal/validation"
	"github.com/ggoodman/mcp-discovery-go/mcp"
)

// ErrUnknownEndpoint is returned when resolving an endpoint the registry has
// no handler for.
var ErrUnknownEndpoint = errors.New("unknown endpoint")

// Reply is the outcome of a dispatch: an HTTP status and a body to be
// serialized as JSON. Transports pass both through unmodified.
type Reply struct {
	Status int
	Body   any
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used by the dispatcher. If not provided, logs are discarded.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// Catalog is the read side of a capability registry. *catalog.Registry is the
// implementation served in production; implementations must be safe for
// concurrent reads.
type Catalog interface {
	Manifest() mcp.CapabilityManifest
	Resources() []mcp.Resource
	Tools() []mcp.Tool
}

var _ Catalog = (*catalog.Registry)(nil)

// Dispatcher classifies, validates and answers discovery calls against a
// Catalog. It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	reg Catalog
	log *slog.Logger
}

// NewDispatcher builds a Dispatcher serving the given catalog.
func NewDispatcher(reg Catalog, opts ...Option) (*Dispatcher, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if r, ok := reg.(*catalog.Registry); ok && r == nil {
		return nil, fmt.Errorf("registry is required")
	}
	d := &Dispatcher{
		reg: reg,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch answers one call to endpoint.
//
// When enveloped is false (plain GET discovery) the registry payload is
// returned bare with status 200 and no validation takes place.
//
// When enveloped is true, body must hold a JSON-RPC request. Undecodable
// bodies yield -32603 with a null id; envelopes failing validation yield
// -32600 echoing the request id when one was supplied. Faults while building
// the result yield -32603 echoing the known id. Every error reply has status
// 400.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoint Endpoint, enveloped bool, body []byte) (reply Reply) {
	var id *jsonrpc.RequestID

	defer func() {
		if p := recover(); p != nil {
			d.log.ErrorContext(ctx, "dispatch.panic",
				slog.String("endpoint", string(endpoint)),
				slog.Any("panic", p),
				slog.String("stack", string(debug.Stack())),
			)
			reply = internalError(id)
		}
	}()

	d.log.InfoContext(ctx, "dispatch.start", slog.String("endpoint", string(endpoint)), slog.Bool("enveloped", enveloped))

	if !enveloped {
		result, err := d.resolve(endpoint)
		if err != nil {
			d.log.ErrorContext(ctx, "dispatch.fault", slog.String("endpoint", string(endpoint)), slog.String("err", err.Error()))
			return internalError(nil)
		}
		return Reply{Status: http.StatusOK, Body: result}
	}

	req, err := jsonrpc.Decode(body)
	if err != nil {
		d.log.WarnContext(ctx, "jsonrpc.decode.fail", slog.String("endpoint", string(endpoint)), slog.String("err", err.Error()))
		return internalError(nil)
	}
	id = req.ID

	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{
		Endpoint: string(endpoint),
		Method:   req.Method,
		ID:       req.ID.String(),
	})

	if err := validation.Request(req, endpoint.Method()); err != nil {
		d.log.WarnContext(ctx, "jsonrpc.request.invalid", slog.String("err", err.Error()))
		return Reply{Status: http.StatusBadRequest, Body: jsonrpc.NewInvalidRequestResponse(id)}
	}

	result, err := d.resolve(endpoint)
	if err != nil {
		d.log.ErrorContext(ctx, "dispatch.fault", slog.String("err", err.Error()))
		return internalError(id)
	}

	res, err := jsonrpc.NewResultResponse(id, result)
	if err != nil {
		d.log.ErrorContext(ctx, "jsonrpc.result.fail", slog.String("err", err.Error()))
		return internalError(id)
	}

	d.log.InfoContext(ctx, "dispatch.ok")
	return Reply{Status: http.StatusOK, Body: res}
}

// resolve produces the method-specific payload for an endpoint. The same
// payload backs both the bare and the enveloped shapes.
func (d *Dispatcher) resolve(endpoint Endpoint) (any, error) {
	switch endpoint {
	case EndpointMCP:
		return d.reg.Manifest(), nil
	case EndpointResourcesRead:
		return mcp.ListResourcesResult{Resources: d.reg.Resources()}, nil
	case EndpointToolsList, EndpointTools:
		return mcp.ListToolsResult{Tools: d.reg.Tools()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEndpoint, endpoint)
	}
}

func internalError(id *jsonrpc.RequestID) Reply {
	return Reply{Status: http.StatusBadRequest, Body: jsonrpc.NewInternalErrorResponse(id)}
}
