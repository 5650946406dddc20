// Package insights assembles the per-consultant projection sent to the ML
// insight analyzer and the payload of the training scorer.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonathan/intelliconsult/internal/types"
	"golang.org/x/sync/errgroup"
)

// Source is the slice of the repository the compositor reads from.
type Source interface {
	ListPersonsByRole(ctx context.Context, role types.Role) ([]types.Person, error)
	GetAttendance(ctx context.Context, userID string) (*types.AttendanceRecord, error)
	GetCompletion(ctx context.Context, userID string) (*types.TrainingCompletion, error)
	ListAccepts(ctx context.Context, userID string) ([]types.AcceptRecord, error)
	GetInvites(ctx context.Context, userID string) (*types.InviteRecord, error)
	GetAssignment(ctx context.Context, userID string) (*types.TrainingAssignment, error)
	GetResume(ctx context.Context, userID string) (*types.ResumeRecord, error)
	GetSkillSet(ctx context.Context, userID string) (*types.SkillSet, error)
	GetTraining(ctx context.Context, id string) (*types.Training, error)
}

// Analyzer is the external insight analyzer.
type Analyzer interface {
	AnalyzeInsights(ctx context.Context, payload any) (json.RawMessage, error)
}

// ResumeDetails summarizes a consultant's active resume. Fields are null
// when no resume is on file.
type ResumeDetails struct {
	Path        *string    `json:"path"`
	Skills      []string   `json:"skills"`
	Status      *string    `json:"status"`
	UpdatedDate *time.Time `json:"updatedDate"`
}

// Consultant is the flattened view of one consultant's records.
type Consultant struct {
	UserID              string                    `json:"userId"`
	Name                string                    `json:"name"`
	Email               string                    `json:"email"`
	City                string                    `json:"city"`
	OnBench             bool                      `json:"onBench"`
	ImageURL            string                    `json:"imageUrl"`
	DOJ                 *time.Time                `json:"doj"`
	AttendanceSheet     []types.AttendanceEntry   `json:"attendanceSheet"`
	TrainingsCompleted  []types.CompletedTraining `json:"trainingsCompleted"`
	OpportunityAccepted []string                  `json:"opportunityAccepted"`
	OpportunityInvited  []string                  `json:"opportunityInvited"`
	TrainingsAssigned   []types.AssignedTraining  `json:"trainingsAssigned"`
	ResumeDetails       ResumeDetails             `json:"resumeDetails"`
	Skills              []types.Skill             `json:"skills"`
	Projects            []types.Project           `json:"projects"`
}

// Batch is the analyzer request body.
type Batch struct {
	Consultants []Consultant `json:"consultants"`
}

// Compositor gathers consultant records and forwards them for analysis.
type Compositor struct {
	src      Source
	analyzer Analyzer
	limit    int
	logger   *log.Logger
}

// NewCompositor creates a compositor. limit bounds how many consultants
// are gathered at once.
func NewCompositor(src Source, analyzer Analyzer, limit int, logger *log.Logger) *Compositor {
	if limit <= 0 {
		limit = 8
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Compositor{src: src, analyzer: analyzer, limit: limit, logger: logger}
}

// Compose builds the batch for every consultant. Only a failure to list
// consultants fails the batch; any other lookup degrades to its default.
func (c *Compositor) Compose(ctx context.Context) (*Batch, error) {
	persons, err := c.src.ListPersonsByRole(ctx, types.RoleConsultant)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultants: %w", err)
	}

	consultants := make([]Consultant, len(persons))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i := range persons {
		g.Go(func() error {
			consultants[i] = c.gather(gctx, &persons[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Batch{Consultants: consultants}, nil
}

// Analyze composes the batch and returns the analyzer's reply verbatim.
func (c *Compositor) Analyze(ctx context.Context) (json.RawMessage, error) {
	batch, err := c.Compose(ctx)
	if err != nil {
		return nil, err
	}
	return c.analyzer.AnalyzeInsights(ctx, batch)
}

// gather runs the independent per-consultant lookups concurrently.
func (c *Compositor) gather(ctx context.Context, p *types.Person) Consultant {
	out := Consultant{
		UserID:              p.ID,
		Name:                p.Name,
		Email:               p.Email,
		City:                p.City,
		OnBench:             p.OnBench,
		ImageURL:            p.ImageURL,
		DOJ:                 p.DOJ,
		AttendanceSheet:     []types.AttendanceEntry{},
		TrainingsCompleted:  []types.CompletedTraining{},
		OpportunityAccepted: []string{},
		OpportunityInvited:  []string{},
		TrainingsAssigned:   []types.AssignedTraining{},
		ResumeDetails:       ResumeDetails{Skills: []string{}},
		Skills:              []types.Skill{},
		Projects:            []types.Project{},
	}

	var g errgroup.Group
	lookup := func(name string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				c.logger.Warn("insight lookup failed, using default", "user", p.ID, "lookup", name, "err", err)
			}
			return nil
		})
	}

	lookup("attendance", func() error {
		rec, err := c.src.GetAttendance(ctx, p.ID)
		if err == nil && rec != nil && rec.AttendanceSheet != nil {
			out.AttendanceSheet = rec.AttendanceSheet
		}
		return err
	})
	lookup("completions", func() error {
		rec, err := c.src.GetCompletion(ctx, p.ID)
		if err == nil && rec != nil && rec.TrainingsCompleted != nil {
			out.TrainingsCompleted = rec.TrainingsCompleted
		}
		return err
	})
	lookup("accepts", func() error {
		recs, err := c.src.ListAccepts(ctx, p.ID)
		if err == nil {
			for _, r := range recs {
				out.OpportunityAccepted = append(out.OpportunityAccepted, r.OpportunityID)
			}
		}
		return err
	})
	lookup("invites", func() error {
		rec, err := c.src.GetInvites(ctx, p.ID)
		if err == nil && rec != nil && rec.Opportunities != nil {
			out.OpportunityInvited = rec.Opportunities
		}
		return err
	})
	lookup("assignments", func() error {
		rec, err := c.src.GetAssignment(ctx, p.ID)
		if err == nil && rec != nil && rec.Trainings != nil {
			out.TrainingsAssigned = rec.Trainings
		}
		return err
	})
	lookup("resume", func() error {
		rec, err := c.src.GetResume(ctx, p.ID)
		if err == nil && rec != nil {
			out.ResumeDetails = ResumeDetails{
				Path:        &rec.ResumePath,
				Skills:      rec.Skills,
				Status:      &rec.Status,
				UpdatedDate: &rec.UpdatedDate,
			}
			if out.ResumeDetails.Skills == nil {
				out.ResumeDetails.Skills = []string{}
			}
		}
		return err
	})
	lookup("skillset", func() error {
		rec, err := c.src.GetSkillSet(ctx, p.ID)
		if err == nil && rec != nil {
			if rec.Skills != nil {
				out.Skills = rec.Skills
			}
			if rec.Projects != nil {
				out.Projects = rec.Projects
			}
		}
		return err
	})

	_ = g.Wait()
	return out
}
