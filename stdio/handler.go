package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ggoodman/mcp-discovery-go/internal/jsonrpc"
	"github.com/ggoodman/mcp-discovery-go/internal/logctx"
	"github.com/ggoodman/mcp-discovery-go/mcpservice"
	"github.com/google/uuid"
)

// DefaultMaxLineBytes bounds a single inbound message.
const DefaultMaxLineBytes = 1 << 20

// Handler is a single-connection stdio transport that reads JSON-RPC messages
// from an io.Reader and writes responses to an io.Writer. By default, it uses
// os.Stdin and os.Stdout.
//
// The handler is transport-only; it delegates all semantics to the provided
// mcpservice.Dispatcher.
type Handler struct {
	d            *mcpservice.Dispatcher
	r            io.Reader
	w            io.Writer
	l            *slog.Logger
	maxLineBytes int
}

// NewHandler constructs a stdio Handler with defaults and applies options.
func NewHandler(d *mcpservice.Dispatcher, opts ...Option) *Handler {
	h := &Handler{
		d:            d,
		r:            os.Stdin,
		w:            os.Stdout,
		l:            slog.New(slog.DiscardHandler),
		maxLineBytes: DefaultMaxLineBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve runs the stdio event loop until EOF on the reader or the context is
// canceled. It is safe to call at most once per Handler. Blank lines are
// skipped; every other line gets exactly one response line.
//
// A reader that blocks past cancellation keeps its goroutine until the
// underlying stream is closed.
func (h *Handler) Serve(ctx context.Context) error {
	if h.d == nil {
		return fmt.Errorf("dispatcher is required")
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(h.r)
		sc.Buffer(make([]byte, 0, 64*1024), h.maxLineBytes)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			msg := make([]byte, len(line))
			copy(msg, line)
			select {
			case lines <- msg:
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	enc := json.NewEncoder(h.w)
	h.l.InfoContext(ctx, "stdio.serve.start")

	for {
		select {
		case <-ctx.Done():
			h.l.InfoContext(ctx, "stdio.serve.cancelled")
			return ctx.Err()
		case err := <-readErr:
			if err != nil {
				h.l.ErrorContext(ctx, "stdio.read.fail", slog.String("err", err.Error()))
				return fmt.Errorf("read: %w", err)
			}
			h.l.InfoContext(ctx, "stdio.serve.eof")
			return nil
		case msg := <-lines:
			mctx := logctx.WithRequestData(ctx, &logctx.RequestData{RequestID: uuid.NewString(), Method: "STDIO"})
			reply := h.d.Dispatch(mctx, route(msg), true, msg)
			if err := enc.Encode(reply.Body); err != nil {
				h.l.ErrorContext(mctx, "stdio.write.fail", slog.String("err", err.Error()))
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}

// route picks the endpoint named by the envelope's method. Anything that does
// not name one goes to the handshake endpoint, where it fails decoding or
// method matching with the usual error reply.
func route(msg []byte) mcpservice.Endpoint {
	req, err := jsonrpc.Decode(msg)
	if err != nil {
		return mcpservice.EndpointMCP
	}
	if ep := mcpservice.Endpoint(req.Method); ep.IsValid() {
		return ep
	}
	return mcpservice.EndpointMCP
}
