// Package cmd provides the CLI commands of the affinity backend.
//
// Commands:
//   - serve: HTTP API server (query answering, click tracking, translation)
//   - version: build information
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/affinity-search/affinity/internal/log"
)

// Execute is the main entry point for the affinity CLI.
func Execute() error {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe(logger)
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Affinity - personalization-aware query answering backend")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  affinity serve [addr]  Start HTTP API server (default: 127.0.0.1:5000)")
	fmt.Println("  affinity --version     Show version information")
	fmt.Println("  affinity --help        Show this help")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  ./config.yaml or ~/.affinity/config.yaml, overridden by")
	fmt.Println("  AFFINITY_* environment variables (e.g. AFFINITY_OLLAMA_HOST).")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DEBUG                  Optional: enable debug logging")
}
