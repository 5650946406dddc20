package server

import (
	"net/http"

	"github.com/jonathan/intelliconsult/internal/skills"
	"github.com/jonathan/intelliconsult/internal/types"
)

// ---------------------------------------------------------------------
// Skill Handlers
// ---------------------------------------------------------------------

func (s *Server) handleMergeSkills(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.SkillSubmission
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := s.users.requirePerson(ctx, userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	set, err := s.repo.GetSkillSet(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if set == nil {
		status = http.StatusCreated
		set = &types.SkillSet{UserID: userID}
	}

	set.Skills = skills.MergeSubmission(set.Skills, req.Skills)
	set.Projects = skills.MergeProjects(set.Projects, req.Projects)
	set.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveSkillSet(ctx, set); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, status, set)
}

func (s *Server) handleGetSkills(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	set, err := s.repo.GetSkillSet(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if set == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "skill set", ID: userID})
		return
	}

	s.jsonResponse(w, http.StatusOK, set)
}

// handleUploadResume sends a resume to the ML parser, records it and folds
// the extracted skill names into the person's inventory.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "file", Message: "resume file is required"})
		return
	}
	defer file.Close()

	ctx := r.Context()
	if _, err := s.users.requirePerson(ctx, userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	parsed, err := s.ml.ParseResume(ctx, header.Filename, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	prev, err := s.repo.GetResume(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resume := &types.ResumeRecord{
		UserID:      userID,
		ResumePath:  header.Filename,
		Skills:      parsed.Skills,
		Status:      types.ResumeStatusNew,
		UpdatedDate: s.now().UTC(),
	}
	if prev != nil {
		resume.Status = types.ResumeStatusUpdated
	}
	if err := s.repo.SaveResume(ctx, resume); err != nil {
		s.writeError(w, r, err)
		return
	}

	set, err := s.repo.GetSkillSet(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if set == nil {
		set = &types.SkillSet{UserID: userID, Projects: []types.Project{}}
	}
	set.Skills = skills.MergeFromResume(set.Skills, parsed.Skills)
	set.UpdatedAt = resume.UpdatedDate
	if err := s.repo.SaveSkillSet(ctx, set); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "Resume uploaded and skills updated successfully",
		"resume":  resume,
		"skills":  set.Skills,
	})
}

// handleTrainingScore returns the training scorer's reply verbatim.
func (s *Server) handleTrainingScore(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	score, err := s.compositor.TrainingScore(r.Context(), s.ml, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, score)
}
