// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ggoodman/mcp-discovery-go/internal/logctx"
	"github.com/joeshaw/envdecode"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Log formats accepted by MCP_LOG_FORMAT.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Transports accepted by MCP_TRANSPORT.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config for the discovery server. Defaults are provided via struct tags.
type Config struct {
	// Transport is "http" or "stdio". ENV: MCP_TRANSPORT
	Transport string `env:"MCP_TRANSPORT,default=http"`
	// Addr to listen on. ENV: MCP_ADDR
	Addr string `env:"MCP_ADDR,default=:8080"`
	// BasePath prefixes every route, e.g. "/api". ENV: MCP_BASE_PATH
	BasePath string `env:"MCP_BASE_PATH"`
	// CatalogPath points at a YAML, TOML or JSON catalog. The built-in
	// catalog is served when empty. ENV: MCP_CATALOG_PATH
	CatalogPath string `env:"MCP_CATALOG_PATH"`

	LogLevel  slog.Level `env:"MCP_LOG_LEVEL,default=info"`
	LogFormat string     `env:"MCP_LOG_FORMAT,default=json"`

	MaxBodyBytes    int64         `env:"MCP_MAX_BODY_BYTES,default=1048576"`
	ReadTimeout     time.Duration `env:"MCP_READ_TIMEOUT,default=10s"`
	WriteTimeout    time.Duration `env:"MCP_WRITE_TIMEOUT,default=10s"`
	ShutdownTimeout time.Duration `env:"MCP_SHUTDOWN_TIMEOUT,default=15s"`
}

// Load decodes the environment into a Config and validates it. Values that
// fail to parse are reported instead of silently falling back to defaults.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("%w: MCP_TRANSPORT must be %q or %q, got %q", ErrInvalidConfig, TransportHTTP, TransportStdio, c.Transport)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: MCP_ADDR must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("%w: MCP_LOG_FORMAT must be %q or %q, got %q", ErrInvalidConfig, LogFormatJSON, LogFormatText, c.LogFormat)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: MCP_MAX_BODY_BYTES must be positive, got %d", ErrInvalidConfig, c.MaxBodyBytes)
	}
	for name, d := range map[string]time.Duration{
		"MCP_READ_TIMEOUT":     c.ReadTimeout,
		"MCP_WRITE_TIMEOUT":    c.WriteTimeout,
		"MCP_SHUTDOWN_TIMEOUT": c.ShutdownTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, name, d)
		}
	}
	return nil
}

// NewLogger builds the process logger. Records carry request-scoped groups
// from the context through logctx.Handler.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	var h slog.Handler
	if c.LogFormat == LogFormatText {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(logctx.Handler{Handler: h})
}
