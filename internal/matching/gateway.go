// Package matching sends one opportunity and the consultant skill roster to
// the external matcher and enriches the consultants it picks.
package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/intelliconsult/internal/mlclient"
	"github.com/jonathan/intelliconsult/internal/types"
	"golang.org/x/sync/errgroup"
)

// Defaults for consultants whose person record is missing.
const (
	UnknownName  = "Unknown"
	UnknownEmail = ""
)

var postingDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// Roster is the slice of the repository the gateway reads from.
type Roster interface {
	ListSkillSets(ctx context.Context) ([]types.SkillSet, error)
	GetPerson(ctx context.Context, id string) (*types.Person, error)
}

// Matcher is the external opportunity matcher.
type Matcher interface {
	MatchOpportunities(ctx context.Context, req *mlclient.MatchRequest) (*mlclient.MatchResponse, error)
}

// Request is an opportunity to match. PostingDate is kept as text so that
// an unparseable value is reported as a validation failure.
type Request struct {
	Name        string   `json:"name"`
	KeySkills   []string `json:"keySkills"`
	PostingDate string   `json:"postingDate"`
}

// Match is one consultant the matcher picked, with contact details.
type Match struct {
	UserID               string                        `json:"userId"`
	Name                 string                        `json:"name"`
	Email                string                        `json:"email"`
	MatchedOpportunities []mlclient.MatchedOpportunity `json:"matched_opportunities"`
}

// Result is the reshaped matcher reply.
type Result struct {
	Status                 string          `json:"status"`
	ClusteredOpportunities json.RawMessage `json:"clustered_opportunities"`
	ConsultantMatches      []Match         `json:"consultant_matches"`
}

// Gateway matches opportunities against the consultant roster.
type Gateway struct {
	roster  Roster
	matcher Matcher
	limit   int
}

// NewGateway creates a gateway. limit bounds concurrent person lookups.
func NewGateway(roster Roster, matcher Matcher, limit int) *Gateway {
	if limit <= 0 {
		limit = 8
	}
	return &Gateway{roster: roster, matcher: matcher, limit: limit}
}

// OpportunityText renders an opportunity the way the matcher expects it.
func OpportunityText(name string, keySkills []string) string {
	return fmt.Sprintf("Opportunity: %s. Required Skills: %s", name, strings.Join(keySkills, ", "))
}

// Validate checks the fields the matcher needs and returns the posting
// date at day precision.
func (r *Request) Validate() (string, error) {
	if strings.TrimSpace(r.Name) == "" {
		return "", &ValidationError{Field: "name", Message: "is required"}
	}
	if len(r.KeySkills) == 0 {
		return "", &ValidationError{Field: "keySkills", Message: "must be a non-empty list"}
	}
	for _, skill := range r.KeySkills {
		if strings.TrimSpace(skill) == "" {
			return "", &ValidationError{Field: "keySkills", Message: "must not contain blank entries"}
		}
	}
	if strings.TrimSpace(r.PostingDate) == "" {
		return "", &ValidationError{Field: "postingDate", Message: "is required"}
	}
	for _, layout := range postingDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(r.PostingDate)); err == nil {
			return t.UTC().Format("2006-01-02"), nil
		}
	}
	return "", &ValidationError{Field: "postingDate", Message: "is not a valid date"}
}

// BuildRequest assembles the matcher payload for one opportunity.
func BuildRequest(sets []types.SkillSet, text, date string) *mlclient.MatchRequest {
	consultants := make([]mlclient.ConsultantSkills, 0, len(sets))
	for _, set := range sets {
		skills := make([]mlclient.SkillSignal, 0, len(set.Skills))
		for _, s := range set.Skills {
			skills = append(skills, mlclient.SkillSignal{
				Name:              s.Name,
				YearsOfExperience: s.YearsOfExperience,
				Endorsements:      s.Endorsements,
			})
		}
		consultants = append(consultants, mlclient.ConsultantSkills{UserID: set.UserID, Skills: skills})
	}
	return &mlclient.MatchRequest{
		Consultants:   consultants,
		Opportunities: []mlclient.OpportunityText{{Text: text, Date: date}},
	}
}

// Match validates req, calls the matcher and returns the consultants with
// at least one matched opportunity. Validation failures never reach the
// matcher.
func (g *Gateway) Match(ctx context.Context, req *Request) (*Result, error) {
	date, err := req.Validate()
	if err != nil {
		return nil, err
	}

	sets, err := g.roster.ListSkillSets(ctx)
	if err != nil {
		return nil, &MatchError{Message: "failed to load skill roster", Cause: err}
	}

	resp, err := g.matcher.MatchOpportunities(ctx, BuildRequest(sets, OpportunityText(req.Name, req.KeySkills), date))
	if err != nil {
		return nil, err
	}

	var picked []mlclient.ConsultantMatch
	for _, m := range resp.ConsultantMatches {
		if len(m.MatchedOpportunities) > 0 {
			picked = append(picked, m)
		}
	}

	matches := make([]Match, len(picked))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.limit)
	for i, m := range picked {
		grp.Go(func() error {
			p, err := g.roster.GetPerson(gctx, m.UserID)
			if err != nil {
				return &MatchError{Message: fmt.Sprintf("failed to load consultant %s", m.UserID), Cause: err}
			}
			matches[i] = Match{
				UserID:               m.UserID,
				Name:                 UnknownName,
				Email:                UnknownEmail,
				MatchedOpportunities: m.MatchedOpportunities,
			}
			if p != nil {
				if p.Name != "" {
					matches[i].Name = p.Name
				}
				matches[i].Email = p.Email
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Status:                 "success",
		ClusteredOpportunities: resp.ClusteredOpportunities,
		ConsultantMatches:      matches,
	}, nil
}
