// Command quiver runs the event-driven trigger engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/quiverhq/quiver/internal/config"
	"github.com/quiverhq/quiver/internal/logging"
	"github.com/quiverhq/quiver/internal/services"
)

const shutdownTimeout = 30 * time.Second

var version = "dev"

func main() {
	var (
		triggersFile = flag.String("triggers", "", "Trigger definition file (JSON or YAML)")
		showVersion  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("quiver v%s\n", version)
		os.Exit(0)
	}

	cfg := config.LoadConfig()
	if *triggersFile != "" {
		cfg.Triggers.File = *triggersFile
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting quiver",
		zap.String("version", version),
		zap.Int("api_port", cfg.API.Port),
		zap.String("log_level", cfg.Log.Level))

	manager := services.NewManager(cfg, logger)
	if err := manager.Init(); err != nil {
		logger.Fatal("initialization failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := manager.Run(ctx); err != nil {
		logger.Error("engine stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	manager.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
