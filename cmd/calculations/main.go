package main

import (
	"os"
	"os/signal"
	"syscall"

	"calculations-api/internal/auth"
	"calculations-api/internal/config"
	"calculations-api/internal/server"
	"calculations-api/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// Best effort; configuration comes from real env vars in production.
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	var store storage.Store
	switch cfg.DatabaseDriver {
	case "sqlite":
		store, err = storage.NewSQLiteStorage(cfg.DatabaseURL)
	default:
		store, err = storage.NewPostgresStorage(cfg.DatabaseURL)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer store.Close()

	tokens := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	srv := server.Start(cfg, store, tokens, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	server.Shutdown(srv, cfg.ShutdownTimeout, logger)
}
