package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonathan/intelliconsult/internal/attendance"
	"github.com/jonathan/intelliconsult/internal/config"
	"github.com/jonathan/intelliconsult/internal/repository"
	"github.com/spf13/cobra"
)

var hoursTotal bool

var hoursCmd = &cobra.Command{
	Use:   "hours [user-id]",
	Short: "Print training hours from the store",
	Long:  "Prints monthly training hours for one consultant, or for every consultant when no id is given. With --total, prints the per-training breakdown for one consultant instead.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHours,
}

func init() {
	hoursCmd.Flags().BoolVar(&hoursTotal, "total", false, "Print per-training totals instead of monthly hours (requires a user id)")
	rootCmd.AddCommand(hoursCmd)
}

func runHours(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	svc := newHoursService(repository.New(store), cfg, logger)
	userID := ""
	if len(args) == 1 {
		userID = args[0]
	}
	return printHours(ctx, cmd.OutOrStdout(), svc, userID, hoursTotal)
}

func newHoursService(repo *repository.Repository, cfg *config.Config, logger *log.Logger) *attendance.Service {
	agg := attendance.NewAggregator(cfg.MonthlyHoursPerDay, cfg.TotalHoursPerDay)
	return attendance.NewService(repo, agg, cfg.FanoutLimit, logger)
}

// printHours writes the requested hours view as indented JSON.
func printHours(ctx context.Context, w io.Writer, svc *attendance.Service, userID string, total bool) error {
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", userID, err)
		}
		userID = id.String()
	}

	var result any
	switch {
	case total && userID == "":
		return fmt.Errorf("--total requires a user id")
	case total:
		totals, err := svc.TotalHoursFor(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to compute total hours: %w", err)
		}
		result = totals
	case userID != "":
		monthly, err := svc.MonthlyHoursFor(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to compute monthly hours: %w", err)
		}
		result = map[string]any{"userId": userID, "monthlyHours": monthly}
	default:
		all, err := svc.MonthlyHoursForAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to compute monthly hours: %w", err)
		}
		result = map[string]any{"monthlyHours": all}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
