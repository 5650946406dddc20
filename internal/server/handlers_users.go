package server

import (
	"net/http"

	"github.com/jonathan/intelliconsult/internal/types"
)

// ---------------------------------------------------------------------
// Person Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := s.users.Register(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, profile)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := s.users.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.UpdateProfileRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := s.users.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, profile)
}

func (s *Server) handleListConsultants(w http.ResponseWriter, r *http.Request) {
	persons, err := s.repo.ListPersonsByRole(r.Context(), types.RoleConsultant)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	consultants := make([]types.ConsultantSummary, 0, len(persons))
	for _, p := range persons {
		consultants = append(consultants, types.ConsultantSummary{ID: p.ID, Name: p.Name, Email: p.Email})
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"consultants": consultants,
		"count":       len(consultants),
	})
}

func (s *Server) handleCountConsultants(w http.ResponseWriter, r *http.Request) {
	count, err := s.repo.CountPersonsByRole(r.Context(), types.RoleConsultant)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]int64{"count": count})
}
