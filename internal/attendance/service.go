package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jonathan/intelliconsult/internal/types"
	"golang.org/x/sync/errgroup"
)

// Source is the slice of the repository the service reads from.
type Source interface {
	GetAssignment(ctx context.Context, userID string) (*types.TrainingAssignment, error)
	GetAttendance(ctx context.Context, userID string) (*types.AttendanceRecord, error)
	GetCompletion(ctx context.Context, userID string) (*types.TrainingCompletion, error)
	GetTraining(ctx context.Context, id string) (*types.Training, error)
	ListPersonsByRole(ctx context.Context, role types.Role) ([]types.Person, error)
}

// Service computes hours and pending trainings from stored records.
type Service struct {
	src    Source
	agg    *Aggregator
	limit  int
	logger *log.Logger
}

// NewService creates a service. limit bounds the number of persons
// processed concurrently by MonthlyHoursForAll.
func NewService(src Source, agg *Aggregator, limit int, logger *log.Logger) *Service {
	if agg == nil {
		agg = NewAggregator(MonthlyViewHoursPerDay, TotalViewHoursPerDay)
	}
	if limit <= 0 {
		limit = 8
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{src: src, agg: agg, limit: limit, logger: logger}
}

// Aggregator returns the rates the service computes with.
func (s *Service) Aggregator() *Aggregator {
	return s.agg
}

// loadRecords fetches a person's assignment and attendance concurrently.
func (s *Service) loadRecords(ctx context.Context, userID string) (*types.TrainingAssignment, *types.AttendanceRecord, error) {
	var (
		assign *types.TrainingAssignment
		att    *types.AttendanceRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assign, err = s.src.GetAssignment(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		att, err = s.src.GetAttendance(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load attendance: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return assign, att, nil
}

// MonthlyHoursFor returns the monthly hours of one person.
func (s *Service) MonthlyHoursFor(ctx context.Context, userID string) (MonthlyHours, error) {
	assign, att, err := s.loadRecords(ctx, userID)
	if err != nil {
		return MonthlyHours{}, err
	}
	return s.agg.MonthlyHours(assign, att)
}

// MonthlyHoursForAll returns monthly hours for every consultant. Consultants
// without assignments or attendance are left out of the result.
func (s *Service) MonthlyHoursForAll(ctx context.Context) (map[string]MonthlyHours, error) {
	consultants, err := s.src.ListPersonsByRole(ctx, types.RoleConsultant)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultants: %w", err)
	}

	var mu sync.Mutex
	result := make(map[string]MonthlyHours, len(consultants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for _, c := range consultants {
		userID := c.ID
		g.Go(func() error {
			hours, err := s.MonthlyHoursFor(gctx, userID)
			if errors.Is(err, ErrNoAssignments) || errors.Is(err, ErrNoAttendance) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("monthly hours for %s: %w", userID, err)
			}
			mu.Lock()
			result[userID] = hours
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// TotalHoursFor returns per-training hours for one person. Trainings no
// longer in the catalog are dropped from the breakdown and the total.
func (s *Service) TotalHoursFor(ctx context.Context, userID string) (*TotalHours, error) {
	assign, att, err := s.loadRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.agg.TrainingTotals(assign, att)
	if err != nil {
		return nil, err
	}

	catalog := make([]*types.Training, len(totals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i := range totals {
		g.Go(func() error {
			t, err := s.src.GetTraining(gctx, totals[i].TrainingID)
			if err != nil {
				return fmt.Errorf("failed to load training %s: %w", totals[i].TrainingID, err)
			}
			catalog[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &TotalHours{UserID: userID, Trainings: make([]TrainingHours, 0, len(totals))}
	for i, th := range totals {
		if catalog[i] == nil {
			s.logger.Debug("dropping training missing from catalog", "user", userID, "training", th.TrainingID)
			continue
		}
		th.TrainingName = catalog[i].Name
		out.Trainings = append(out.Trainings, th)
		out.TotalHours += th.HoursAttended
	}
	return out, nil
}

// PendingTrainings returns a person's assigned trainings not yet completed.
// A person without an assignment record has none pending.
func (s *Service) PendingTrainings(ctx context.Context, userID string) ([]types.AssignedTraining, error) {
	assign, err := s.src.GetAssignment(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	done, err := s.src.GetCompletion(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	return Pending(assign, done), nil
}
