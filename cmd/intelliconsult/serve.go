package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/intelliconsult/internal/config"
	"github.com/jonathan/intelliconsult/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the consultant, training, attendance, skill and opportunity endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
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

	logger, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using the in-memory store; data is lost on exit")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	store, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		_ = store.Close(context.Background())
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
