package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/target/storefront-web/config"
	httpx "github.com/target/storefront-web/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the storefront router and an unstarted server around it.
func NewHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, errors.New("http server config missing AppConfig")
	}
	if cfg.Services.Sessions == nil {
		return nil, errors.New("http server requires a session service")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler, err := httpx.NewRouter(cfg.Services.RouterServices(cfg.Config, logger))
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	if cfg.Config.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", cfg.Config.HTTP.CompressionLevel)
	}

	addr := cfg.Config.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Config.HTTP.ReadHeaderTimeout,
		IdleTimeout:       120 * time.Second,
	}, nil
}

// RunConfig contains dependencies for Run.
type RunConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// Listener overrides Config.HTTP.Addr when set.
	Listener net.Listener
	// Signals defaults to SIGINT and SIGTERM.
	Signals []os.Signal
}

// Run serves HTTP until ctx is cancelled, a shutdown signal arrives or the
// server fails, then drains requests and in-flight session fetches.
func Run(ctx context.Context, cfg *RunConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("run config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server, err := NewHTTPServer(&HTTPServerConfig{Config: cfg.Config, Services: cfg.Services, Logger: logger})
	if err != nil {
		return err
	}

	signals := cfg.Signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	serviceCtx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	var background sync.WaitGroup
	if cfg.Services.MemorySessions != nil {
		background.Add(1)
		go func() {
			defer background.Done()
			cfg.Services.MemorySessions.RunJanitor(serviceCtx, cfg.Config.Session.JanitorInterval, logger)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		var serveErr error
		if cfg.Listener != nil {
			serveErr = server.Serve(cfg.Listener)
		} else {
			serveErr = server.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", serveErr)
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-serviceCtx.Done():
		logger.Info("shutting down services...")
	case runErr = <-errCh:
		logger.Error("service error", "error", runErr)
	}
	stop()

	stopErr := gracefulStop(shutdownConfig{
		timeout:  cfg.Config.HTTP.ShutdownTimeout,
		server:   server,
		services: cfg.Services,
		logger:   logger,
	})
	background.Wait()
	return errors.Join(runErr, stopErr)
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	timeout  time.Duration
	server   *http.Server
	services ServiceContainer
	logger   *slog.Logger
}

// gracefulStop stops accepting requests, then waits for detached session
// fetches so their results are committed before exit.
func gracefulStop(cfg shutdownConfig) error {
	timeout := cfg.timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if cfg.server != nil {
		if err := cfg.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		} else {
			cfg.logger.Info("HTTP server stopped")
		}
	}

	if cfg.services.Sessions != nil {
		if err := cfg.services.Sessions.Wait(shutdownCtx); err != nil {
			cfg.logger.Warn("timeout waiting for session fetches to settle", "error", err)
		}
	}

	if err := cfg.services.Statsd.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close statsd: %w", err))
	}
	return errors.Join(errs...)
}
