package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	classboard "github.com/classboard/classboard"
	"github.com/classboard/classboard/config"
	httpx "github.com/classboard/classboard/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, fmt.Errorf("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	templateFS, staticFS, err := assetFilesystems(appCfg.IsDev)
	if err != nil {
		return nil, err
	}

	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{
		TemplateFS: templateFS,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	router := httpx.NewRouter(httpx.RouterOptions{
		Users:       cfg.Services.Users,
		Assignments: cfg.Services.Assignments,
		Auth:        cfg.Services.Auth,
		Sessions: httpx.SessionAuth{
			Codec:      cfg.Services.Codec,
			CookieName: appCfg.Session.CookieName,
		},
		SessionTTL:   appCfg.Session.TTL,
		Renderer:     renderer,
		StaticFS:     staticFS,
		CookieDomain: appCfg.HTTP.CookieDomain,
		IsDev:        appCfg.IsDev,
		Logger:       logger,
	})

	handler := buildHTTPHandler(logger, router, appCfg.HTTP)
	return startServer(logger, handler, appCfg.HTTP.Addr), nil
}

// assetFilesystems returns the template and static filesystems. Dev mode
// reads from disk for hot reloading; production uses the embedded copies.
func assetFilesystems(isDev bool) (templates fs.FS, static fs.FS, err error) {
	if isDev {
		if _, statErr := os.Stat("frontend/templates"); statErr == nil {
			return os.DirFS("frontend/templates"), os.DirFS("frontend/static"), nil
		}
	}
	templates, err = fs.Sub(classboard.TemplateFS, "frontend/templates")
	if err != nil {
		return nil, nil, fmt.Errorf("template fs: %w", err)
	}
	static, err = fs.Sub(classboard.StaticFS, "frontend/static")
	if err != nil {
		return nil, nil, fmt.Errorf("static fs: %w", err)
	}
	return templates, static, nil
}

func buildHTTPHandler(logger *slog.Logger, router http.Handler, httpCfg config.HTTPConfig) http.Handler {
	// Order: Recover -> Logging -> Compression -> Router
	h := router
	if httpCfg.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", httpCfg.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: httpCfg.CompressionLevel, Logger: logger})(h)
	}

	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)

	return h
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}
