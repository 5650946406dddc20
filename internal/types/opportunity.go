package types

import "time"

// Opportunity is a role posted by a hiring manager.
type Opportunity struct {
	ID                string    `json:"id" bson:"id"`
	Name              string    `json:"name" bson:"name"`
	KeySkills         []string  `json:"keySkills" bson:"keySkills"`
	YearsOfExperience float64   `json:"yearsOfExperience" bson:"yearsOfExperience"`
	PostingDate       time.Time `json:"postingDate" bson:"postingDate"`
	LastDateToApply   time.Time `json:"lastDateToApply" bson:"lastDateToApply"`
	HiringManagerID   string    `json:"hiringManagerId" bson:"hiringManagerId"`
	NumberOfOpenings  int       `json:"numberOfOpenings" bson:"numberOfOpenings"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
}

// CreateOpportunityRequest is the body of an opportunity insert.
type CreateOpportunityRequest struct {
	Name              string    `json:"name" validate:"required"`
	KeySkills         []string  `json:"keySkills" validate:"required,min=1,dive,required"`
	YearsOfExperience float64   `json:"yearsOfExperience" validate:"gte=0"`
	PostingDate       time.Time `json:"postingDate" validate:"required"`
	LastDateToApply   time.Time `json:"lastDateToApply" validate:"required,gtefield=PostingDate"`
	HiringManagerID   string    `json:"hiringManagerId" validate:"required,uuid"`
	NumberOfOpenings  int       `json:"numberOfOpenings" validate:"gte=1"`
}

// InviteRecord lists the opportunities a person has been invited to and
// has not yet accepted.
type InviteRecord struct {
	UserID        string    `json:"userId" bson:"userId"`
	Opportunities []string  `json:"opportunities" bson:"opportunities"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Contains reports whether opportunityID is among the pending invites.
func (r *InviteRecord) Contains(opportunityID string) bool {
	if r == nil {
		return false
	}
	for _, id := range r.Opportunities {
		if id == opportunityID {
			return true
		}
	}
	return false
}

// Remove drops opportunityID from the pending invites and reports whether
// anything changed.
func (r *InviteRecord) Remove(opportunityID string) bool {
	if r == nil {
		return false
	}
	kept := r.Opportunities[:0]
	removed := false
	for _, id := range r.Opportunities {
		if id == opportunityID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	r.Opportunities = kept
	return removed
}

// AcceptRecord marks one accepted opportunity for one person.
type AcceptRecord struct {
	UserID        string    `json:"userId" bson:"userId"`
	OpportunityID string    `json:"opportunityId" bson:"opportunityId"`
	AcceptedAt    time.Time `json:"acceptedAt" bson:"acceptedAt"`
}

// OpportunityActionRequest names an opportunity to invite to or accept.
type OpportunityActionRequest struct {
	OpportunityID string `json:"opportunityId" validate:"required,uuid"`
}

// AcceptedOpportunity is the flattened view of an accepted opportunity.
type AcceptedOpportunity struct {
	OpportunityID     string    `json:"opportunityId"`
	Name              string    `json:"name"`
	KeySkills         []string  `json:"keySkills"`
	YearsOfExperience float64   `json:"yearsOfExperience"`
	PostingDate       time.Time `json:"postingDate"`
	LastDateToApply   time.Time `json:"lastDateToApply"`
	HiringManagerID   string    `json:"hiringManagerId"`
	HiringManagerName string    `json:"hiringManagerName"`
	NumberOfOpenings  int       `json:"numberOfOpenings"`
	AcceptedAt        time.Time `json:"acceptedAt"`
}
