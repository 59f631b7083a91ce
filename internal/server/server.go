package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/eniz1806/ecsizer/internal/api"
	"github.com/eniz1806/ecsizer/internal/config"
	"github.com/eniz1806/ecsizer/internal/metrics"
	"github.com/eniz1806/ecsizer/internal/middleware"
	"github.com/eniz1806/ecsizer/internal/ratelimit"
)

type Server struct {
	cfg       *config.Config
	metrics   *metrics.Collector
	handler   http.Handler
	tlsConfig *tls.Config
	limiter   *ratelimit.Limiter
	// acmeHandler answers HTTP-01 challenges when Let's Encrypt is in use.
	acmeHandler http.Handler
}

func New(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	mc := metrics.NewCollector()
	s := &Server{
		cfg:     cfg,
		metrics: mc,
	}

	if cfg.Server.AutoTLS.Enabled {
		tlsCfg, acme, err := NewAutoTLS(cfg.Server.AutoTLS)
		if err != nil {
			return nil, fmt.Errorf("init auto-tls: %w", err)
		}
		s.tlsConfig = tlsCfg
		s.acmeHandler = acme
	}

	if rl := cfg.Server.RateLimit; rl.Enabled {
		s.limiter = ratelimit.NewLimiter(rl.RequestsPerSec, rl.BurstSize)
	}

	s.handler = s.routes(api.NewAPIHandler(cfg, mc))
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes(apiHandler http.Handler) http.Handler {
	var accessLogger *slog.Logger
	if s.cfg.Logging.AccessLog {
		accessLogger = slog.Default().With("component", "access")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.JSONRecoverer)
	r.Use(middleware.AccessLog(accessLogger, s.metrics))

	r.Get("/health", healthHandler(s.metrics.StartTime()))
	r.Get("/ready", readyHandler(s.cfg))
	r.Method(http.MethodGet, "/metrics", s.metrics)
	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}
		r.Handle("/api/v1/*", apiHandler)
	})
	return r
}

func (s *Server) tlsEnabled() bool {
	return s.cfg.Server.TLS.Enabled || s.tlsConfig != nil
}

// Run starts the server and blocks until shutdown signal is received.
// It handles graceful shutdown with a configurable timeout.
func (s *Server) Run() error {
	addr := s.cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		TLSConfig:         s.tlsConfig,
		ReadHeaderTimeout: 5 * time.Second,
	}

	scheme := "http"
	if s.tlsEnabled() {
		scheme = "https"
	}
	log.Printf("ecsizer starting on %s", addr)
	log.Printf("  Defaults:     %.1f MB, %d nodes x %d drives, replication factor %d",
		s.cfg.Defaults.FileSizeMB, s.cfg.Defaults.Nodes, s.cfg.Defaults.DrivesPerNode, s.cfg.Defaults.ReplicationFactor)
	log.Printf("  API:          %s://%s/api/v1/usage", scheme, addr)
	log.Printf("  Health:       %s://%s/health", scheme, addr)
	if s.cfg.Server.TLS.Enabled {
		log.Printf("  TLS:          enabled (%s, %s)", s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
	} else if s.tlsConfig != nil {
		log.Printf("  TLS:          auto (self-signed=%t)", s.cfg.Server.AutoTLS.SelfSigned)
	}
	if rl := s.cfg.Server.RateLimit; rl.Enabled {
		log.Printf("  Rate limit:   enabled (%.0f rps/%d burst per client)", rl.RequestsPerSec, rl.BurstSize)
	}
	if s.cfg.Logging.AccessLog {
		log.Printf("  Access log:   enabled")
	}

	var acmeServer *http.Server
	if s.acmeHandler != nil {
		acmeServer = &http.Server{Addr: ":80", Handler: s.acmeHandler, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := acmeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("ACME challenge listener: %v", err)
			}
		}()
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		switch {
		case s.cfg.Server.TLS.Enabled:
			errCh <- httpServer.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		case s.tlsConfig != nil:
			errCh <- httpServer.ListenAndServeTLS("", "")
		default:
			errCh <- httpServer.ListenAndServe()
		}
	}()

	// Wait for signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down gracefully...", sig)
	}

	// Graceful shutdown
	timeout := time.Duration(s.cfg.Server.ShutdownTimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var acme shutdowner
	if acmeServer != nil {
		acme = acmeServer
	}
	if err := shutdown(ctx, httpServer, acme); err != nil {
		log.Printf("Graceful shutdown timed out after %v: %v", timeout, err)
		return err
	}

	log.Println("Server stopped gracefully")
	return nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdown stops the ACME listener (if any) and then the main server.
// Only the main server's error is returned; the ACME error is logged.
func shutdown(ctx context.Context, main, acme shutdowner) error {
	if acme != nil {
		if err := acme.Shutdown(ctx); err != nil {
			log.Printf("ACME challenge server shutdown: %v", err)
		}
	}
	return main.Shutdown(ctx)
}

func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
