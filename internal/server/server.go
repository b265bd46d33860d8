package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"calculations-api/internal/auth"
	"calculations-api/internal/config"
	"calculations-api/internal/handlers"
	"calculations-api/internal/metrics"
	"calculations-api/internal/middleware"
	"calculations-api/internal/storage"

	"github.com/rs/zerolog"
)

// NewHandler wires the HTTP surface: auth endpoints, the protected
// calculations subtree, health, metrics and the static front end.
func NewHandler(cfg *config.Config, store storage.Store, tokens *auth.Service, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/register", postOnly(handlers.RegisterHandler(store, cfg.MinPasswordLen)))
	mux.HandleFunc("/auth/token", postOnly(handlers.LoginHandler(store, tokens)))

	calculations := middleware.RequireUser(tokens, store, handlers.CalculationsHandler(store))
	mux.Handle("/calculations", calculations)
	mux.Handle("/calculations/", calculations)

	mux.HandleFunc("/health", handlers.HealthHandler)
	mux.Handle("/metrics", metrics.Handler())

	fs := http.FileServer(http.Dir(cfg.StaticDir))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))
	mux.HandleFunc("/", indexHandler(cfg.StaticDir))

	var handler http.Handler = mux
	handler = metrics.InstrumentHandler(handler)
	handler = middleware.RequestLogger(logger)(handler)
	return handler
}

// Start runs the HTTP server in the background and returns it for shutdown.
func Start(cfg *config.Config, store storage.Store, tokens *auth.Service, logger zerolog.Logger) *http.Server {
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: NewHandler(cfg, store, tokens, logger),
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	return server
}

// Shutdown drains in-flight requests, bounded by the configured timeout.
func Shutdown(server *http.Server, timeout time.Duration, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
}

func postOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, `{"error": "Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// indexHandler serves the browser front end at the root path when present.
func indexHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.Error(w, `{"error": "Not found"}`, http.StatusNotFound)
			return
		}
		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			http.ServeFile(w, r, index)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "Calculations API", "endpoints": {"auth": "/auth", "calculations": "/calculations"}}`))
	}
}
