package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonathan/intelliconsult/internal/docstore/memory"
	"github.com/jonathan/intelliconsult/internal/mlclient"
	"github.com/jonathan/intelliconsult/internal/repository"
	"github.com/jonathan/intelliconsult/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	got any
}

func (f *fakeAnalyzer) AnalyzeInsights(_ context.Context, payload any) (json.RawMessage, error) {
	f.got = payload
	return json.RawMessage(`{"insights": []}`), nil
}

type fakeScorer struct {
	got *mlclient.TrainingScoreRequest
}

func (f *fakeScorer) ScoreTraining(_ context.Context, req *mlclient.TrainingScoreRequest) (json.RawMessage, error) {
	f.got = req
	return json.RawMessage(`{"score": 1}`), nil
}

func seedConsultants(t *testing.T, n int) *repository.Repository {
	t.Helper()
	ctx := context.Background()
	repo := repository.New(memory.New())
	updated := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("c%02d", i)
		require.NoError(t, repo.SavePerson(ctx, &types.Person{ID: id, Name: "Consultant " + id, Role: types.RoleConsultant}))
		require.NoError(t, repo.SaveSkillSet(ctx, &types.SkillSet{UserID: id, Skills: []types.Skill{{Name: "Go", Endorsements: 1}}}))
		if i == 3 {
			continue
		}
		require.NoError(t, repo.SaveResume(ctx, &types.ResumeRecord{
			UserID: id, ResumePath: id + ".pdf", Skills: []string{"Go"}, Status: types.ResumeStatusNew, UpdatedDate: updated,
		}))
	}
	require.NoError(t, repo.SavePerson(ctx, &types.Person{ID: "m1", Role: types.RoleManager}))
	return repo
}

func TestCompose_MissingResumeDefaults(t *testing.T) {
	c := NewCompositor(seedConsultants(t, 10), &fakeAnalyzer{}, 3, nil)

	batch, err := c.Compose(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Consultants, 10)

	missing := batch.Consultants[3]
	assert.Equal(t, "c03", missing.UserID)
	assert.Nil(t, missing.ResumeDetails.Path)
	assert.Nil(t, missing.ResumeDetails.Status)
	assert.Nil(t, missing.ResumeDetails.UpdatedDate)
	assert.Empty(t, missing.ResumeDetails.Skills)
	assert.Len(t, missing.Skills, 1)

	present := batch.Consultants[4]
	require.NotNil(t, present.ResumeDetails.Path)
	assert.Equal(t, "c04.pdf", *present.ResumeDetails.Path)
}

func TestCompose_EmptyDefaultsEncodeAsArrays(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(memory.New())
	require.NoError(t, repo.SavePerson(ctx, &types.Person{ID: "c1", Role: types.RoleConsultant}))

	batch, err := NewCompositor(repo, &fakeAnalyzer{}, 0, nil).Compose(ctx)
	require.NoError(t, err)

	data, err := json.Marshal(batch.Consultants[0])
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, key := range []string{"attendanceSheet", "trainingsCompleted", "opportunityAccepted", "opportunityInvited", "trainingsAssigned", "skills", "projects"} {
		assert.Equal(t, []any{}, fields[key], key)
	}
	assert.Nil(t, fields["doj"])
	assert.Equal(t, map[string]any{"path": nil, "skills": []any{}, "status": nil, "updatedDate": nil}, fields["resumeDetails"])
}

func TestCompose_CollectsOpportunities(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(memory.New())
	require.NoError(t, repo.SavePerson(ctx, &types.Person{ID: "c1", Role: types.RoleConsultant}))
	require.NoError(t, repo.SaveAccept(ctx, &types.AcceptRecord{UserID: "c1", OpportunityID: "o1"}))
	require.NoError(t, repo.SaveInvites(ctx, &types.InviteRecord{UserID: "c1", Opportunities: []string{"o2", "o3"}}))

	batch, err := NewCompositor(repo, &fakeAnalyzer{}, 0, nil).Compose(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, batch.Consultants[0].OpportunityAccepted)
	assert.Equal(t, []string{"o2", "o3"}, batch.Consultants[0].OpportunityInvited)
}

type flakySource struct {
	*repository.Repository
}

func (flakySource) GetAttendance(context.Context, string) (*types.AttendanceRecord, error) {
	return nil, errors.New("attendance store down")
}

func TestCompose_LookupErrorsDegradeToDefaults(t *testing.T) {
	c := NewCompositor(flakySource{seedConsultants(t, 2)}, &fakeAnalyzer{}, 0, nil)

	batch, err := c.Compose(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Consultants, 2)
	assert.Empty(t, batch.Consultants[0].AttendanceSheet)
	assert.NotNil(t, batch.Consultants[0].AttendanceSheet)
}

type brokenDirectory struct {
	*repository.Repository
}

func (brokenDirectory) ListPersonsByRole(context.Context, types.Role) ([]types.Person, error) {
	return nil, errors.New("users store down")
}

func TestCompose_ListingFailureFailsBatch(t *testing.T) {
	c := NewCompositor(brokenDirectory{seedConsultants(t, 1)}, &fakeAnalyzer{}, 0, nil)
	_, err := c.Compose(context.Background())
	assert.Error(t, err)
}

func TestAnalyze_SendsBatch(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	c := NewCompositor(seedConsultants(t, 2), analyzer, 0, nil)

	raw, err := c.Analyze(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"insights": []}`, string(raw))

	batch, ok := analyzer.got.(*Batch)
	require.True(t, ok)
	assert.Len(t, batch.Consultants, 2)
}

func TestTrainingScore(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(memory.New())
	require.NoError(t, repo.SaveSkillSet(ctx, &types.SkillSet{UserID: "u1", Skills: []types.Skill{{Name: "Go", YearsOfExperience: 2, Certification: true, Endorsements: 3}}}))
	require.NoError(t, repo.SaveTraining(ctx, &types.Training{ID: "t1", SkillsToBeAcquired: []string{"Kubernetes", "Helm"}}))
	require.NoError(t, repo.SaveTraining(ctx, &types.Training{ID: "t2", SkillsToBeAcquired: []string{"gRPC"}}))
	require.NoError(t, repo.SaveCompletion(ctx, &types.TrainingCompletion{UserID: "u1", TrainingsCompleted: []types.CompletedTraining{
		{TrainingID: "t2"}, {TrainingID: "gone"}, {TrainingID: "t1"},
	}}))

	scorer := &fakeScorer{}
	c := NewCompositor(repo, &fakeAnalyzer{}, 0, nil)
	raw, err := c.TrainingScore(ctx, scorer, "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 1}`, string(raw))

	require.NotNil(t, scorer.got)
	assert.Equal(t, "u1", scorer.got.Consultants[0].UserID)
	assert.Equal(t, []mlclient.ScoredSkill{{Name: "Go", YearsOfExperience: 2, Certification: true, Endorsements: 3}}, scorer.got.Consultants[0].Skills)
	assert.Equal(t, []string{"Go"}, scorer.got.RequiredSkillsMap["u1"])
	assert.Equal(t, []string{"gRPC", "Kubernetes", "Helm"}, scorer.got.CompletedTrainingsMap["u1"])

	_, err = c.TrainingScore(ctx, scorer, "nobody")
	assert.ErrorIs(t, err, ErrNoSkillSet)
}
