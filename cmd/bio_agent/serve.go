package main

import (
	"context"
	"fmt"

	"github.com/jonathan/bio-generator/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web form and JSON API",
	Long:  `Start an HTTP server that renders the bio form and exposes the generation API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides BIOGEN_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	gen, client, err := newGenerator(ctx, cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close LLM client", zap.Error(err))
		}
	}()

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		Generator: gen,
		Store:     store,
		RateLimit: cfg.RateLimitConfig(),
		Logger:    logger,
	})
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
