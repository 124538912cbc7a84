package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"clr-site/internal/app"
	"clr-site/internal/auth"
	"clr-site/internal/core"
	"clr-site/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	logger := core.NewLogger()

	config, err := core.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	site, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Error("Failed to start site", "error", err)
		os.Exit(1)
	}
	defer site.Close()

	srv := server.New(config, logger, site.Store, site.Registry, auth.NewMiddleware(site.Auth, logger.ForFeature("auth")))
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
