package types

import "time"

// Training is an entry in the global training catalog.
type Training struct {
	ID                  string    `json:"id" bson:"id"`
	Name                string    `json:"name" bson:"name"`
	StartDate           time.Time `json:"startDate" bson:"startDate"`
	EndDate             time.Time `json:"endDate" bson:"endDate"`
	TrainerName         string    `json:"trainerName" bson:"trainerName"`
	SkillsToBeAcquired  []string  `json:"skillsToBeAcquired" bson:"skillsToBeAcquired"`
	EligibilityCriteria string    `json:"eligibilityCriteria,omitempty" bson:"eligibilityCriteria,omitempty"`
	Prerequisites       string    `json:"prerequisites,omitempty" bson:"prerequisites,omitempty"`
	PassingCriteria     string    `json:"passingCriteria,omitempty" bson:"passingCriteria,omitempty"`
	NoOfSeats           int       `json:"noOfSeats" bson:"noOfSeats"`
	CreatedAt           time.Time `json:"createdAt" bson:"createdAt"`
}

// CreateTrainingRequest is the body of a catalog insert.
type CreateTrainingRequest struct {
	Name                string    `json:"name" validate:"required"`
	StartDate           time.Time `json:"startDate" validate:"required"`
	EndDate             time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	TrainerName         string    `json:"trainerName" validate:"required"`
	SkillsToBeAcquired  []string  `json:"skillsToBeAcquired" validate:"dive,required"`
	EligibilityCriteria string    `json:"eligibilityCriteria,omitempty"`
	Prerequisites       string    `json:"prerequisites,omitempty"`
	PassingCriteria     string    `json:"passingCriteria,omitempty"`
	NoOfSeats           int       `json:"noOfSeats" validate:"gte=0"`
}

// AssignedTraining is one training assigned to a person.
type AssignedTraining struct {
	TrainingID    string     `json:"trainingId" bson:"trainingId"`
	AssignedDate  time.Time  `json:"assignedDate" bson:"assignedDate"`
	CompletedDate *time.Time `json:"completedDate,omitempty" bson:"completedDate,omitempty"`
}

// TrainingAssignment lists the trainings assigned to one person. A
// trainingId appears at most once.
type TrainingAssignment struct {
	UserID    string             `json:"userId" bson:"userId"`
	Trainings []AssignedTraining `json:"trainings" bson:"trainings"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Has reports whether trainingID is already assigned.
func (a *TrainingAssignment) Has(trainingID string) bool {
	if a == nil {
		return false
	}
	for _, t := range a.Trainings {
		if t.TrainingID == trainingID {
			return true
		}
	}
	return false
}

// TrainingIDs returns the set of assigned training identifiers.
func (a *TrainingAssignment) TrainingIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	if a == nil {
		return ids
	}
	for _, t := range a.Trainings {
		ids[t.TrainingID] = struct{}{}
	}
	return ids
}

// AssignTrainingRequest assigns one catalog training to a person.
type AssignTrainingRequest struct {
	TrainingID   string    `json:"trainingId" validate:"required,uuid"`
	AssignedDate time.Time `json:"assignedDate" validate:"required"`
}

// CompletedTraining records a finished training with its score.
type CompletedTraining struct {
	TrainingID     string    `json:"trainingId" bson:"trainingId"`
	CompletedDate  time.Time `json:"completedDate" bson:"completedDate"`
	Score          int       `json:"score" bson:"score"`
	CertificateURL string    `json:"certificateUrl,omitempty" bson:"certificateUrl,omitempty"`
	Feedback       string    `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

// TrainingCompletion lists the trainings one person has completed.
type TrainingCompletion struct {
	UserID             string              `json:"userId" bson:"userId"`
	TrainingsCompleted []CompletedTraining `json:"trainingsCompleted" bson:"trainingsCompleted"`
	UpdatedAt          time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// CompleteTrainingRequest records one completed training. Score is a
// pointer so an explicit 0 is distinguishable from a missing field.
type CompleteTrainingRequest struct {
	TrainingID     string    `json:"trainingId" validate:"required,uuid"`
	CompletedDate  time.Time `json:"completedDate" validate:"required"`
	Score          *int      `json:"score" validate:"required,gte=0,lte=100"`
	CertificateURL string    `json:"certificateUrl,omitempty" validate:"omitempty,url"`
	Feedback       string    `json:"feedback,omitempty"`
}
