package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/collection"
	"github.com/hpungsan/pantry/internal/config"
	"github.com/hpungsan/pantry/internal/db"
	"github.com/hpungsan/pantry/internal/enrich"
	"github.com/hpungsan/pantry/internal/kv"
	"github.com/hpungsan/pantry/internal/logging"
	"github.com/hpungsan/pantry/internal/mcp"
	"github.com/hpungsan/pantry/internal/off"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"lookup": true, "classify": true,
	"ideas": true, "recipes": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___  ___  _  _ _____ ___ _   _
  | _ \/ _ \| \| |_   _| _ \ | | |
  |  _/ /_\ \ .' | | | |   /\_, |
  |_|/_/   \_\_|\_| |_| |_|_\|__/

  Barcode lookup and recipe composer

  Usage: pantry <command> [options]
         pantry --help

  MCP server mode requires piped input.`)
}

// openBackend returns the configured key-value backend and its closer.
func openBackend(ctx context.Context, baseDir string, cfg *config.Config) (kv.Store, func() error, error) {
	if cfg.StorageBackend == config.BackendRedis {
		r, err := kv.NewRedis(ctx, cfg.RedisURL, kv.DefaultRedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return r, r.Close, nil
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)
	return kv.NewSQLite(database), database.Close, nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any setup
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".pantry")
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create %s: %v\n", baseDir, err)
		os.Exit(1)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.NewWithFile(cfg.LogLevel, os.Stderr, baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx := context.Background()

	backend, closeBackend, err := openBackend(ctx, baseDir, cfg)
	if err != nil {
		logger.Error("storage unavailable", zap.String("backend", cfg.StorageBackend), zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = closeBackend() }()

	store, err := collection.Open(ctx, backend, logger)
	if err != nil {
		logger.Error("failed to load collections", zap.Error(err))
		os.Exit(1)
	}

	lookuper := off.New(off.Options{
		BaseURL: cfg.OFFBaseURL,
		Timeout: time.Duration(cfg.LookupTimeoutSeconds) * time.Second,
		Logger:  logger,
	})
	enricher := enrich.New(enrich.Options{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
		Timeout: time.Duration(cfg.AITimeoutSeconds) * time.Second,
		Logger:  logger,
	})
	if !enricher.Enabled() {
		logger.Debug("ai enrichment disabled", zap.String("env", config.EnvAIAPIKey))
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(&cliDeps{
			store:    store,
			lookuper: lookuper,
			enricher: enricher,
			logger:   logger,
		})
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'pantry --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	logger.Info("starting mcp server", zap.String("version", Version), zap.String("backend", cfg.StorageBackend))
	deps := mcp.Deps{Store: store, Lookuper: lookuper, Enricher: enricher, Logger: logger}
	if err := mcp.Run(deps, cfg, Version); err != nil {
		logger.Error("mcp server stopped", zap.Error(err))
		os.Exit(1)
	}
}
