// Command mcp-discovery serves the MCP discovery endpoints over HTTP.
//
// Settings come from MCP_* environment variables; see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ggoodman/mcp-discovery-go/catalog"
	"github.com/ggoodman/mcp-discovery-go/internal/config"
	"github.com/ggoodman/mcp-discovery-go/mcphttp"
	"github.com/ggoodman/mcp-discovery-go/mcpservice"
	"github.com/ggoodman/mcp-discovery-go/stdio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mcp-discovery: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.NewLogger(os.Stderr)

	reg, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	d, err := mcpservice.NewDispatcher(reg, mcpservice.WithLogger(log))
	if err != nil {
		return err
	}

	if cfg.Transport == config.TransportStdio {
		log.Info("stdio.start", slog.Int("resources", len(reg.Resources())), slog.Int("tools", len(reg.Tools())))
		err := stdio.NewHandler(d, stdio.WithLogger(log), stdio.WithMaxLineBytes(cfg.MaxBodyBytes)).Serve(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	h, err := mcphttp.New(d,
		mcphttp.WithLogger(log),
		mcphttp.WithMaxBodyBytes(cfg.MaxBodyBytes),
		mcphttp.WithBasePath(cfg.BasePath),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server.listen",
			slog.String("addr", cfg.Addr),
			slog.String("base_path", cfg.BasePath),
			slog.Int("resources", len(reg.Resources())),
			slog.Int("tools", len(reg.Tools())),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("server.shutdown", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loadCatalog returns the built-in catalog unless a catalog file is configured.
func loadCatalog(path string) (*catalog.Registry, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	reg, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return reg, nil
}
