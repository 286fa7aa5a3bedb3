package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/symbol-tools-mcp/internal/config"
	"github.com/ironsheep/symbol-tools-mcp/internal/library"
	"github.com/ironsheep/symbol-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("symbol-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("symbol-tools-mcp - MCP server for hand-drawn symbol recognition")
			fmt.Println()
			fmt.Println("Usage: symbol-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=<file>      YAML settings file\n", config.EnvConfig)
			fmt.Printf("  %s=<file>     SQLite template library\n", config.EnvLibrary)
			fmt.Printf("  %s=debug    Enable debug logging\n", config.EnvLogLevel)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run() error {
	settings, err := config.FromEnv()
	if err != nil {
		return err
	}
	server.Version = Version

	if settings.Debug() {
		log.Printf("Symbol MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib := library.New()
	var store *library.Store
	if settings.LibraryPath != "" {
		lib, store, err = library.Load(ctx, settings.LibraryPath, library.WithMigrationLog(settings.Debug()))
		if err != nil {
			return err
		}
		defer store.Close()
		if settings.Debug() {
			log.Printf("Loaded %d templates from %s", lib.Len(), settings.LibraryPath)
		}
	}

	srv := server.New(settings, lib, store)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
