package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/jonathan/intelliconsult/internal/config"
	"github.com/jonathan/intelliconsult/internal/db"
	"github.com/jonathan/intelliconsult/internal/docstore"
	"github.com/jonathan/intelliconsult/internal/docstore/memory"
	"github.com/jonathan/intelliconsult/internal/logging"
	"github.com/jonathan/intelliconsult/internal/mongodb"
)

// loadConfig reads and validates the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg.
func newLogger(cfg *config.Config, out io.Writer) (*log.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Output: out,
	})
}

// openStore connects to the document store selected by cfg.StoreDriver.
func openStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverMongo:
		store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
