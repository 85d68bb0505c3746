package main

import (
	"context"
	"fmt"

	"github.com/jonathan/bio-generator/internal/bios"
	"github.com/jonathan/bio-generator/internal/config"
	"github.com/jonathan/bio-generator/internal/db"
	"github.com/jonathan/bio-generator/internal/llm"
	"go.uber.org/zap"
)

// newLLMClient is replaced in tests.
var newLLMClient = llm.NewClient

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// openStore connects to Postgres when a database URL is configured and
// falls back to the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("No database configured, keeping history in memory")
		return db.NewMemoryStore(), nil
	}
	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return store, nil
}

// newGenerator creates the Gemini client and the generator around it. The
// returned client must be closed by the caller.
func newGenerator(ctx context.Context, cfg *config.Config, store db.Store, logger *zap.Logger) (*bios.Generator, llm.Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, nil, err
	}
	client, err := newLLMClient(ctx, &cfg.LLM, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	gen := bios.NewGenerator(client,
		bios.WithRecorder(store),
		bios.WithLogger(logger),
		bios.WithTimeout(cfg.GenerationTimeout))
	return gen, client, nil
}
