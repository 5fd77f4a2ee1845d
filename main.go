package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/consensuslabs/festival/backend/internal/config"
	"github.com/consensuslabs/festival/backend/internal/logger"
)

func main() {
	// Initialize logger for bootstrapping
	bootLogger, err := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Format: "console"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	configService := config.NewConfigService(bootLogger)
	cfg, err := configService.Load(".")
	if err != nil {
		bootLogger.LogFatal(err, "Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		bootLogger.LogFatal(err, "Failed to initialize application")
	}

	if err := app.Run(ctx); err != nil {
		app.logger.LogError(err, "Application error")
	}
	if err := app.Shutdown(); err != nil {
		app.logger.LogError(err, "Error during shutdown")
		os.Exit(1)
	}
}
