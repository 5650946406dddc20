package mlclient

import "encoding/json"

// ResumeParseResponse is the skill list extracted from a resume.
type ResumeParseResponse struct {
	Skills []string `json:"skills"`
}

// SkillSignal is one skill as sent to the matcher. Certification is not
// part of the matcher's input.
type SkillSignal struct {
	Name              string  `json:"name"`
	YearsOfExperience float64 `json:"yearsOfExperience"`
	Endorsements      int     `json:"endorsements"`
}

// ConsultantSkills is one roster entry of a match request.
type ConsultantSkills struct {
	UserID string        `json:"userId"`
	Skills []SkillSignal `json:"skills"`
}

// OpportunityText is an opportunity rendered for the matcher.
type OpportunityText struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

// MatchRequest is the body of an opportunity match call.
type MatchRequest struct {
	Consultants   []ConsultantSkills `json:"consultants"`
	Opportunities []OpportunityText  `json:"opportunities"`
}

// MatchedOpportunity is one opportunity the matcher assigned to a consultant.
type MatchedOpportunity struct {
	Text  string  `json:"text"`
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// ConsultantMatch lists the opportunities matched to one consultant.
type ConsultantMatch struct {
	UserID               string               `json:"userId"`
	MatchedOpportunities []MatchedOpportunity `json:"matched_opportunities"`
}

// MatchResponse is the matcher's reply. ClusteredOpportunities is passed
// through without interpretation.
type MatchResponse struct {
	ClusteredOpportunities json.RawMessage   `json:"clustered_opportunities"`
	ConsultantMatches      []ConsultantMatch `json:"consultant_matches"`
}

// ScoredSkill is one skill as sent to the training scorer.
type ScoredSkill struct {
	Name              string  `json:"name"`
	YearsOfExperience float64 `json:"yearsOfExperience"`
	Certification     bool    `json:"certification"`
	Endorsements      int     `json:"endorsements"`
}

// TrainingScoreConsultant is one consultant entry of a training score call.
type TrainingScoreConsultant struct {
	UserID string        `json:"userId"`
	Skills []ScoredSkill `json:"skills"`
}

// TrainingScoreRequest is the body of a training score call. Both maps are
// keyed by user id.
type TrainingScoreRequest struct {
	Consultants           []TrainingScoreConsultant `json:"consultants"`
	RequiredSkillsMap     map[string][]string       `json:"required_skills_map"`
	CompletedTrainingsMap map[string][]string       `json:"completed_trainings_map"`
}
