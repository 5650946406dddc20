// Package skills merges incoming skill observations into a person's skill
// inventory. Skill names are matched case-insensitively and keep the
// casing of whichever write introduced them.
package skills

import (
	"strings"

	"github.com/jonathan/intelliconsult/internal/types"
)

// defaultEndorsements is given to a submitted skill that names no count.
const defaultEndorsements = 1

// inventory indexes a skill list by comparison key.
type inventory struct {
	skills []types.Skill
	index  map[string]int
}

func newInventory(existing []types.Skill) *inventory {
	inv := &inventory{
		skills: make([]types.Skill, 0, len(existing)),
		index:  make(map[string]int, len(existing)),
	}
	for _, s := range existing {
		key := types.SkillKey(s.Name)
		if _, dup := inv.index[key]; dup {
			continue
		}
		inv.index[key] = len(inv.skills)
		inv.skills = append(inv.skills, s)
	}
	return inv
}

func (inv *inventory) lookup(name string) (*types.Skill, bool) {
	i, ok := inv.index[types.SkillKey(name)]
	if !ok {
		return nil, false
	}
	return &inv.skills[i], true
}

func (inv *inventory) add(s types.Skill) {
	inv.index[types.SkillKey(s.Name)] = len(inv.skills)
	inv.skills = append(inv.skills, s)
}

// MergeFromResume adds the names a resume parse produced that the
// inventory does not already hold. Existing entries are never modified.
func MergeFromResume(existing []types.Skill, names []string) []types.Skill {
	inv := newInventory(existing)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := inv.lookup(name); ok {
			continue
		}
		inv.add(types.Skill{Name: name})
	}
	return inv.skills
}

// MergeSubmission applies a manual skill submission. A matching skill gains
// one endorsement per incoming entry, takes the incoming experience only
// when it is strictly greater, and takes certification only when the field
// was sent. An unseen skill is inserted with one endorsement unless the
// entry says otherwise. Skills inserted earlier in the same batch are
// matched like existing ones.
func MergeSubmission(existing []types.Skill, incoming []types.SkillInput) []types.Skill {
	inv := newInventory(existing)
	for _, in := range incoming {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}

		if cur, ok := inv.lookup(name); ok {
			if in.YearsOfExperience != nil && *in.YearsOfExperience > cur.YearsOfExperience {
				cur.YearsOfExperience = *in.YearsOfExperience
			}
			if in.Certification != nil {
				cur.Certification = bool(*in.Certification)
			}
			cur.Endorsements++
			continue
		}

		s := types.Skill{Name: name, Endorsements: defaultEndorsements}
		if in.YearsOfExperience != nil {
			s.YearsOfExperience = *in.YearsOfExperience
		}
		if in.Certification != nil {
			s.Certification = bool(*in.Certification)
		}
		if in.Endorsements != nil {
			s.Endorsements = *in.Endorsements
		}
		inv.add(s)
	}
	return inv.skills
}

// MergeProjects appends the incoming projects whose githubUrl is not yet
// listed, including duplicates within the incoming batch.
func MergeProjects(existing, incoming []types.Project) []types.Project {
	merged := make([]types.Project, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged = append(merged, existing...)
	for _, p := range existing {
		seen[p.GitHubURL] = struct{}{}
	}
	for _, p := range incoming {
		if _, dup := seen[p.GitHubURL]; dup {
			continue
		}
		seen[p.GitHubURL] = struct{}{}
		merged = append(merged, p)
	}
	return merged
}

// Names returns the skill names in inventory order.
func Names(skills []types.Skill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}
