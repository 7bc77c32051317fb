package mcphttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/mcp-discovery-go/internal/jsonrpc"
	"github.com/ggoodman/mcp-discovery-go/internal/logctx"
	"github.com/ggoodman/mcp-discovery-go/mcpservice"
	"github.com/google/uuid"
)

var (
	_ http.Handler = (*Handler)(nil)
)

var jsonMediaType = contenttype.NewMediaType("application/json")

// DefaultMaxBodyBytes bounds the size of a POST body read by the handler.
const DefaultMaxBodyBytes int64 = 1 << 20

// HealthPath is served in addition to the discovery routes for health checks.
const HealthPath = "/healthz"

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// Option configures the Handler.
type Option func(*newConfig)

type newConfig struct {
	logger       *slog.Logger
	maxBodyBytes int64
	basePath     string
}

// WithLogger sets the logger used by the handler. If not provided, logs are discarded.
func WithLogger(log *slog.Logger) Option {
	return func(c *newConfig) { c.logger = log }
}

// WithMaxBodyBytes bounds the POST body size. Non-positive values are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(c *newConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithBasePath mounts every route under a path prefix such as "/api".
func WithBasePath(p string) Option {
	return func(c *newConfig) { c.basePath = p }
}

// Handler serves the discovery routes over HTTP. GET requests are answered
// with bare payloads and POST requests with JSON-RPC envelopes; both are
// produced by the Dispatcher and written through unmodified.
type Handler struct {
	mux          *http.ServeMux
	log          *slog.Logger
	dispatcher   *mcpservice.Dispatcher
	maxBodyBytes int64
}

// New builds a Handler around a Dispatcher.
func New(d *mcpservice.Dispatcher, opts ...Option) (*Handler, error) {
	if d == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	cfg := newConfig{maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&cfg)
	}

	base, err := normalizeBasePath(cfg.basePath)
	if err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	h := &Handler{
		log:          log,
		dispatcher:   d,
		maxBodyBytes: cfg.maxBodyBytes,
	}

	mux := http.NewServeMux()
	for _, ep := range mcpservice.Endpoints() {
		path := base + ep.Path()
		mux.HandleFunc(fmt.Sprintf("GET %s", path), h.handleGet(ep))
		mux.HandleFunc(fmt.Sprintf("POST %s", path), h.handlePost(ep))
	}
	mux.HandleFunc(fmt.Sprintf("GET %s", base+HealthPath), h.handleHealth)
	h.mux = mux

	return h, nil
}

// normalizeBasePath returns "" for the root or a prefix with a leading and no
// trailing slash.
func normalizeBasePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "", nil
	}
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("base path must start with '/', got %q", p)
	}
	if strings.ContainsAny(p, "{} ") {
		return "", fmt.Errorf("base path contains invalid characters: %q", p)
	}
	return p, nil
}

// RequestIDHeader carries the per-request id also found in log records.
const RequestIDHeader = "X-Request-Id"

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := logctx.WithRequestData(r.Context(), &logctx.RequestData{
		RequestID:  uuid.NewString(),
		Method:     r.Method,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		Path:       r.URL.Path,
	})
	tw := &trackingWriter{ResponseWriter: w}

	defer func() {
		if p := recover(); p != nil {
			if p == http.ErrAbortHandler {
				panic(p)
			}
			h.log.ErrorContext(ctx, "http.panic",
				slog.Any("panic", p),
				slog.Bool("response_started", tw.started),
				slog.String("stack", string(debug.Stack())),
			)
			// Once the status line is out the reply cannot be replaced.
			if !tw.started {
				_ = writeJSON(tw, http.StatusBadRequest, jsonrpc.NewInternalErrorResponse(nil))
			}
		}
	}()

	h.mux.ServeHTTP(tw, r.WithContext(ctx))
}

// trackingWriter records whether a response has been started.
type trackingWriter struct {
	http.ResponseWriter
	started bool
}

func (w *trackingWriter) WriteHeader(status int) {
	w.started = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// handleGet answers a bare discovery read: no envelope, no validation.
func (h *Handler) handleGet(ep mcpservice.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		h.log.InfoContext(ctx, "http.get.start", slog.String("endpoint", string(ep)))

		reply := h.dispatcher.Dispatch(ctx, ep, false, nil)
		h.writeReply(w, r, reply)

		h.log.InfoContext(ctx, "http.get.done", slog.Int("status", reply.Status), slog.Duration("dur", time.Since(start)))
	}
}

// handlePost answers a JSON-RPC call bound to the endpoint's method.
func (h *Handler) handlePost(ep mcpservice.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		h.log.InfoContext(ctx, "http.post.start", slog.String("endpoint", string(ep)))

		// Any Content-Type is dispatched; a declared non-JSON one is only noted.
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mt, err := contenttype.GetMediaType(r)
			if err != nil || !mt.Matches(jsonMediaType) {
				h.log.WarnContext(ctx, "content_type.unexpected", slog.String("content_type", ct))
			}
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				h.log.WarnContext(ctx, "http.body.too_large", slog.Int64("limit", mbe.Limit))
			} else {
				h.log.WarnContext(ctx, "http.body.read_fail", slog.String("err", err.Error()))
			}
			// An unreadable body is handled as an undecodable envelope.
			body = nil
		}

		reply := h.dispatcher.Dispatch(ctx, ep, true, body)
		h.writeReply(w, r, reply)

		h.log.InfoContext(ctx, "http.post.done", slog.Int("status", reply.Status), slog.Duration("dur", time.Since(start)))
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeReply(w http.ResponseWriter, r *http.Request, reply mcpservice.Reply) {
	if rd, ok := logctx.RequestDataFrom(r.Context()); ok {
		w.Header().Set(RequestIDHeader, rd.RequestID)
	}
	if err := writeJSON(w, reply.Status, reply.Body); err != nil {
		h.log.ErrorContext(r.Context(), "http.write.fail", slog.String("err", err.Error()))
	}
}
