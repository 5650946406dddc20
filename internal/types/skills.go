package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Skill is one entry of a person's skill inventory. Names are unique per
// person under case-insensitive comparison.
type Skill struct {
	Name              string  `json:"name" bson:"name"`
	YearsOfExperience float64 `json:"yearsOfExperience" bson:"yearsOfExperience"`
	Certification     bool    `json:"certification" bson:"certification"`
	Endorsements      int     `json:"endorsements" bson:"endorsements"`
}

// Project is a piece of work listed on a skill set, keyed by GitHubURL.
type Project struct {
	ProjectInfo        string   `json:"projectInfo" bson:"projectInfo"`
	TimeConsumedInDays int      `json:"timeConsumedInDays" bson:"timeConsumedInDays"`
	SkillsUsed         []string `json:"skillsUsed" bson:"skillsUsed"`
	GitHubURL          string   `json:"githubUrl" bson:"githubUrl"`
}

// SkillSet is the skill inventory and project list of one person.
type SkillSet struct {
	UserID    string    `json:"userId" bson:"userId"`
	Skills    []Skill   `json:"skills" bson:"skills"`
	Projects  []Project `json:"projects" bson:"projects"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// LooseBool decodes any JSON scalar by truthiness: false, 0, "" and null
// are false, everything else is true.
type LooseBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *LooseBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*b = false
	case bool:
		*b = LooseBool(t)
	case float64:
		*b = t != 0
	case string:
		*b = t != ""
	default:
		*b = true
	}
	return nil
}

// SkillInput is one incoming skill observation. Optional fields are
// pointers so the merge can tell "absent" from zero.
type SkillInput struct {
	Name              string     `json:"name" validate:"required"`
	YearsOfExperience *float64   `json:"yearsOfExperience,omitempty" validate:"omitempty,gte=0"`
	Certification     *LooseBool `json:"certification,omitempty"`
	Endorsements      *int       `json:"endorsements,omitempty" validate:"omitempty,gte=0"`
}

// SkillSubmission is the body of a skill-set merge call.
type SkillSubmission struct {
	Skills   []SkillInput `json:"skills" validate:"dive"`
	Projects []Project    `json:"projects"`
}

// ResumeStatus values mark the first upload and later replacements.
const (
	ResumeStatusNew     = "new"
	ResumeStatusUpdated = "updated"
)

// ResumeRecord is the active resume of one person. Re-uploads replace it.
type ResumeRecord struct {
	UserID      string    `json:"userId" bson:"userId"`
	ResumePath  string    `json:"resumePath" bson:"resumePath"`
	Skills      []string  `json:"skills" bson:"skills"`
	Status      string    `json:"status" bson:"status"`
	UpdatedDate time.Time `json:"updatedDate" bson:"updatedDate"`
}

// SkillKey is the comparison key for skill names.
func SkillKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
