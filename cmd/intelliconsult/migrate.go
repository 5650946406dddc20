package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/intelliconsult/internal/config"
	"github.com/jonathan/intelliconsult/internal/db"
	"github.com/jonathan/intelliconsult/internal/mongodb"
	"github.com/jonathan/intelliconsult/internal/repository"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the store schema and indexes",
	Long:  "Creates the documents table for the postgres store, or the secondary indexes for the mongo store. Safe to run repeatedly.",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// mongoIndexes lists the secondary indexes the repository filters on.
func mongoIndexes() []mongodb.Index {
	return []mongodb.Index{
		{Collection: repository.CollectionUsers, Field: "email", Unique: true},
		{Collection: repository.CollectionUsers, Field: "role"},
		{Collection: repository.CollectionOpportunities, Field: "hiringManagerId"},
		{Collection: repository.CollectionAccepts, Field: "userId"},
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close(ctx)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
	case config.DriverMongo:
		store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		defer store.Close(ctx)
		if err := store.EnsureIndexes(ctx, mongoIndexes()); err != nil {
			return err
		}
	case config.DriverMemory:
		logger.Info("memory store needs no migration")
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	logger.Info("migration complete", "driver", cfg.StoreDriver)
	return nil
}
