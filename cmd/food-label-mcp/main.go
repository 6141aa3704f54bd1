package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ironsheep/food-label-mcp/internal/logger"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// A missing .env is normal; only report one that exists but is broken.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}

	// Logs go to stderr until configuration is loaded; stdout is for MCP.
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		log := logger.WithComponent("main")
		log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}
