package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/intelliconsult/internal/mlclient"
	"github.com/jonathan/intelliconsult/internal/types"
	"golang.org/x/sync/errgroup"
)

// ErrNoSkillSet is returned when a training score is requested for a
// person without a skill set.
var ErrNoSkillSet = errors.New("user skills not found")

// TrainingScorer is the external training scorer.
type TrainingScorer interface {
	ScoreTraining(ctx context.Context, req *mlclient.TrainingScoreRequest) (json.RawMessage, error)
}

// BuildTrainingScoreRequest assembles the scorer payload for one person
// from their skills and the skills taught by their completed trainings.
func BuildTrainingScoreRequest(userID string, set *types.SkillSet, completedSkills []string) *mlclient.TrainingScoreRequest {
	skills := make([]mlclient.ScoredSkill, 0, len(set.Skills))
	required := make([]string, 0, len(set.Skills))
	for _, s := range set.Skills {
		skills = append(skills, mlclient.ScoredSkill{
			Name:              s.Name,
			YearsOfExperience: s.YearsOfExperience,
			Certification:     s.Certification,
			Endorsements:      s.Endorsements,
		})
		required = append(required, s.Name)
	}
	if completedSkills == nil {
		completedSkills = []string{}
	}
	return &mlclient.TrainingScoreRequest{
		Consultants:           []mlclient.TrainingScoreConsultant{{UserID: userID, Skills: skills}},
		RequiredSkillsMap:     map[string][]string{userID: required},
		CompletedTrainingsMap: map[string][]string{userID: completedSkills},
	}
}

// CompletedTrainingSkills returns the skills taught by every training the
// person completed, in completion order. Trainings missing from the
// catalog contribute nothing.
func (c *Compositor) CompletedTrainingSkills(ctx context.Context, done *types.TrainingCompletion) ([]string, error) {
	if done == nil {
		return []string{}, nil
	}

	taught := make([][]string, len(done.TrainingsCompleted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i, ct := range done.TrainingsCompleted {
		g.Go(func() error {
			t, err := c.src.GetTraining(gctx, ct.TrainingID)
			if err != nil {
				return fmt.Errorf("failed to load training %s: %w", ct.TrainingID, err)
			}
			if t != nil {
				taught[i] = t.SkillsToBeAcquired
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []string{}
	for _, skills := range taught {
		out = append(out, skills...)
	}
	return out, nil
}

// TrainingScore sends a person's skills and completed-training skills to
// the scorer and returns its reply verbatim.
func (c *Compositor) TrainingScore(ctx context.Context, scorer TrainingScorer, userID string) (json.RawMessage, error) {
	set, err := c.src.GetSkillSet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skill set: %w", err)
	}
	if set == nil {
		return nil, ErrNoSkillSet
	}

	done, err := c.src.GetCompletion(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	taught, err := c.CompletedTrainingSkills(ctx, done)
	if err != nil {
		return nil, err
	}

	return scorer.ScoreTraining(ctx, BuildTrainingScoreRequest(userID, set, taught))
}
