package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/uecda/uecda-server-go/internal/config"
	"github.com/uecda/uecda-server-go/internal/game"
	"github.com/uecda/uecda-server-go/internal/journal"
	"github.com/uecda/uecda-server-go/internal/server"
)

var (
	configPath = flag.String("config", "", "path to configuration file (YAML)")
	port       = flag.Int("port", 0, "listen port (overrides config)")
	numGames   = flag.Int("num-games", 0, "number of games to play (overrides config)")
	gameLog    = flag.String("game-log", "", "directory for JSONL game journals (filename auto-generated)")
	showHands  = flag.Bool("show-hands", false, "log dealt hands at info level")
	verbose    = flag.Bool("v", false, "enable debug logging")

	version = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *numGames != 0 {
		cfg.Game.NumGames = *numGames
	}
	if *gameLog != "" {
		cfg.Journal.Enabled = true
		cfg.Journal.Path = *gameLog
	}
	if *showHands {
		cfg.Logging.ShowHands = true
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting UECda server",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Int("num_games", cfg.Game.NumGames),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	os.Exit(run(ctx, cfg, logger))
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) int {
	coord, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to start server", zap.Error(err))
		return 1
	}
	defer coord.Close()

	if err := coord.AcceptPlayers(ctx); err != nil {
		logger.Error("failed to seat players", zap.Error(err))
		return 1
	}

	var jw *journal.Writer
	if cfg.Journal.Enabled {
		path := journalPath(cfg.Journal.Path, coord.PlayerNames())
		jw, err = journal.New(path)
		if err != nil {
			logger.Error("failed to open game journal", zap.Error(err))
			return 1
		}
		defer jw.Close()
		logger.Info("game journal", zap.String("path", path))
	}

	if err := coord.RunSession(ctx, jw); err != nil {
		logger.Error("session aborted", zap.Error(err))
		return 1
	}
	logger.Info("session complete")
	return 0
}

// journalPath derives the journal filename from the timestamp and the
// sorted player names: <timestamp>_<name>_<name>....jsonl. A path that
// already ends in .jsonl is used as-is.
func journalPath(base string, names [game.NumSeats]string) string {
	if strings.HasSuffix(base, ".jsonl") {
		return base
	}
	sorted := append([]string(nil), names[:]...)
	sort.Strings(sorted)
	filename := time.Now().Format("20060102T150405") + "_" +
		strings.Join(sorted, "_") + ".jsonl"
	return filepath.Join(base, filename)
}

// initLogger initializes the zap logger based on configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
