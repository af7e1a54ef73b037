package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api"
	"github.com/Harishhackz/seeing-helper/pkg/config"
)

func main() {
	// Initialize configuration and logger
	cfg, log, err := config.Initialize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Ensure logger is flushed on exit
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Seeing Helper assist server",
		zap.String("environment", cfg.Server.Environment),
		zap.String("address", cfg.Server.GetServerAddr()),
	)

	apiServer := api.NewServer(cfg, log)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		cancel()
	}()

	// Start server
	if err := apiServer.Start(ctx); err != nil {
		log.Error("Server error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server gracefully stopped")
}
