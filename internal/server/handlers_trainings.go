package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/intelliconsult/internal/types"
)

// ---------------------------------------------------------------------
// Training Catalog Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateTraining(w http.ResponseWriter, r *http.Request) {
	var req types.CreateTrainingRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	t := &types.Training{
		ID:                  uuid.NewString(),
		Name:                req.Name,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		TrainerName:         req.TrainerName,
		SkillsToBeAcquired:  req.SkillsToBeAcquired,
		EligibilityCriteria: req.EligibilityCriteria,
		Prerequisites:       req.Prerequisites,
		PassingCriteria:     req.PassingCriteria,
		NoOfSeats:           req.NoOfSeats,
		CreatedAt:           s.now().UTC(),
	}
	if t.SkillsToBeAcquired == nil {
		t.SkillsToBeAcquired = []string{}
	}
	if err := s.repo.SaveTraining(r.Context(), t); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, t)
}

func (s *Server) handleUpcomingTrainings(w http.ResponseWriter, r *http.Request) {
	all, err := s.repo.ListTrainings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	now := s.now()
	upcoming := make([]types.Training, 0, len(all))
	for _, t := range all {
		if !t.EndDate.Before(now) {
			upcoming = append(upcoming, t)
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"trainings": upcoming,
		"count":     len(upcoming),
	})
}

func (s *Server) handleGetTraining(w http.ResponseWriter, r *http.Request) {
	trainingID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.repo.GetTraining(r.Context(), trainingID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if t == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "training", ID: trainingID})
		return
	}

	s.jsonResponse(w, http.StatusOK, t)
}

// ---------------------------------------------------------------------
// Assignment and Completion Handlers
// ---------------------------------------------------------------------

func (s *Server) handleAssignTraining(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.AssignTrainingRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := s.users.requirePerson(ctx, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.requireTraining(r, req.TrainingID); err != nil {
		s.writeError(w, r, err)
		return
	}

	assign, err := s.repo.GetAssignment(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if assign == nil {
		assign = &types.TrainingAssignment{UserID: userID, Trainings: []types.AssignedTraining{}}
	}
	if assign.Has(req.TrainingID) {
		s.writeError(w, r, &ErrConflict{Message: "training already assigned to this user"})
		return
	}

	assign.Trainings = append(assign.Trainings, types.AssignedTraining{
		TrainingID:   req.TrainingID,
		AssignedDate: req.AssignedDate,
	})
	assign.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveAssignment(ctx, assign); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, assign)
}

func (s *Server) handleGetAssignments(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	assign, err := s.repo.GetAssignment(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if assign == nil || len(assign.Trainings) == 0 {
		s.writeError(w, r, &ErrNotFound{Resource: "assigned training", ID: userID})
		return
	}

	pending, err := s.hours.PendingTrainings(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"userId":    assign.UserID,
		"trainings": assign.Trainings,
		"pending":   pending,
	})
}

func (s *Server) handleCountAssignments(w http.ResponseWriter, r *http.Request) {
	all, err := s.repo.ListAssignments(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	count := 0
	for _, a := range all {
		if len(a.Trainings) > 0 {
			count++
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleCompleteTraining(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.CompleteTrainingRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := s.users.requirePerson(ctx, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.requireTraining(r, req.TrainingID); err != nil {
		s.writeError(w, r, err)
		return
	}

	done, err := s.repo.GetCompletion(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if done == nil {
		done = &types.TrainingCompletion{UserID: userID, TrainingsCompleted: []types.CompletedTraining{}}
	}
	done.TrainingsCompleted = append(done.TrainingsCompleted, types.CompletedTraining{
		TrainingID:     req.TrainingID,
		CompletedDate:  req.CompletedDate,
		Score:          *req.Score,
		CertificateURL: req.CertificateURL,
		Feedback:       req.Feedback,
	})
	done.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveCompletion(ctx, done); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, done)
}

func (s *Server) handleGetCompletions(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	done, err := s.repo.GetCompletion(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if done == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "completed training", ID: userID})
		return
	}

	s.jsonResponse(w, http.StatusOK, done)
}

// requireTraining checks that a training exists in the catalog
func (s *Server) requireTraining(r *http.Request, trainingID string) error {
	t, err := s.repo.GetTraining(r.Context(), trainingID)
	if err != nil {
		return err
	}
	if t == nil {
		return &ErrNotFound{Resource: "training", ID: trainingID}
	}
	return nil
}
