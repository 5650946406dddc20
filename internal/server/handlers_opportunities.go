package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/intelliconsult/internal/matching"
	"github.com/jonathan/intelliconsult/internal/types"
	"golang.org/x/sync/errgroup"
)

// ---------------------------------------------------------------------
// Opportunity Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req types.CreateOpportunityRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := s.users.requireRole(ctx, req.HiringManagerID, types.RoleManager); err != nil {
		var notFound *ErrNotFound
		if errors.As(err, &notFound) {
			err = &ErrValidation{Field: "hiringManagerId", Message: "no such manager"}
		}
		s.writeError(w, r, err)
		return
	}

	o := &types.Opportunity{
		ID:                uuid.NewString(),
		Name:              req.Name,
		KeySkills:         req.KeySkills,
		YearsOfExperience: req.YearsOfExperience,
		PostingDate:       req.PostingDate,
		LastDateToApply:   req.LastDateToApply,
		HiringManagerID:   req.HiringManagerID,
		NumberOfOpenings:  req.NumberOfOpenings,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.repo.SaveOpportunity(ctx, o); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, o)
}

func (s *Server) handleGetOpportunity(w http.ResponseWriter, r *http.Request) {
	opportunityID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	o, err := s.requireOpportunity(r, opportunityID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, o)
}

func (s *Server) handleListManagerOpportunities(w http.ResponseWriter, r *http.Request) {
	managerID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.repo.ListOpportunitiesByManager(r.Context(), managerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []types.Opportunity{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"opportunities": list,
		"count":         len(list),
	})
}

// handleMatchOpportunity runs an opportunity through the matcher. The
// request is validated before the ML service is called.
func (s *Server) handleMatchOpportunity(w http.ResponseWriter, r *http.Request) {
	var req matching.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()})
		return
	}

	res, err := s.gateway.Match(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, res)
}

// ---------------------------------------------------------------------
// Invite and Accept Handlers
// ---------------------------------------------------------------------

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.OpportunityActionRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := s.users.requirePerson(ctx, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.requireOpportunity(r, req.OpportunityID); err != nil {
		s.writeError(w, r, err)
		return
	}

	invites, err := s.repo.GetInvites(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if invites == nil {
		invites = &types.InviteRecord{UserID: userID, Opportunities: []string{}}
	}
	if !invites.Contains(req.OpportunityID) {
		invites.Opportunities = append(invites.Opportunities, req.OpportunityID)
		invites.UpdatedAt = s.now().UTC()
		if err := s.repo.SaveInvites(ctx, invites); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Opportunity invitation sent successfully",
		"data":    invites,
	})
}

func (s *Server) handleListInvites(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	invites, err := s.repo.GetInvites(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if invites == nil || len(invites.Opportunities) == 0 {
		s.writeError(w, r, &ErrNotFound{Resource: "invited opportunity", ID: userID})
		return
	}

	loaded := make([]*types.Opportunity, len(invites.Opportunities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, id := range invites.Opportunities {
		g.Go(func() error {
			o, err := s.repo.GetOpportunity(gctx, id)
			loaded[i] = o
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	opportunities := make([]types.Opportunity, 0, len(loaded))
	for _, o := range loaded {
		if o != nil {
			opportunities = append(opportunities, *o)
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"opportunities": opportunities})
}

// handleAccept records an acceptance and withdraws the matching invite.
// Accepting twice is a no-op.
func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.OpportunityActionRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := s.users.requirePerson(ctx, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.requireOpportunity(r, req.OpportunityID); err != nil {
		s.writeError(w, r, err)
		return
	}

	accepted, err := s.repo.GetAccept(ctx, userID, req.OpportunityID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if accepted == nil {
		rec := &types.AcceptRecord{UserID: userID, OpportunityID: req.OpportunityID, AcceptedAt: s.now().UTC()}
		if err := s.repo.SaveAccept(ctx, rec); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	invites, err := s.repo.GetInvites(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if invites.Remove(req.OpportunityID) {
		invites.UpdatedAt = s.now().UTC()
		if err := s.repo.SaveInvites(ctx, invites); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Opportunity accepted successfully"})
}

func (s *Server) handleListAccepts(w http.ResponseWriter, r *http.Request) {
	userID, err := s.pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	accepts, err := s.repo.ListAccepts(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]*types.AcceptedOpportunity, len(accepts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, a := range accepts {
		g.Go(func() error {
			o, err := s.repo.GetOpportunity(gctx, a.OpportunityID)
			if err != nil || o == nil {
				return err
			}
			view := &types.AcceptedOpportunity{
				OpportunityID:     o.ID,
				Name:              o.Name,
				KeySkills:         o.KeySkills,
				YearsOfExperience: o.YearsOfExperience,
				PostingDate:       o.PostingDate,
				LastDateToApply:   o.LastDateToApply,
				HiringManagerID:   o.HiringManagerID,
				NumberOfOpenings:  o.NumberOfOpenings,
				AcceptedAt:        a.AcceptedAt,
			}
			manager, err := s.repo.GetPerson(gctx, o.HiringManagerID)
			if err != nil {
				return err
			}
			if manager != nil {
				view.HiringManagerName = manager.Name
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	opportunities := make([]types.AcceptedOpportunity, 0, len(views))
	for _, v := range views {
		if v != nil {
			opportunities = append(opportunities, *v)
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"opportunities": opportunities})
}

// requireOpportunity loads an opportunity that must exist
func (s *Server) requireOpportunity(r *http.Request, opportunityID string) (*types.Opportunity, error) {
	o, err := s.repo.GetOpportunity(r.Context(), opportunityID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, &ErrNotFound{Resource: "opportunity", ID: opportunityID}
	}
	return o, nil
}

// ---------------------------------------------------------------------
// Insight Handlers
// ---------------------------------------------------------------------

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.compositor.Analyze(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "success",
		"analysis": analysis,
	})
}
