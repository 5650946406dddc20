// Package repository provides typed accessors for every collection over a
// docstore.Store. Getters return nil, nil when the record does not exist.
package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonathan/intelliconsult/internal/docstore"
	"github.com/jonathan/intelliconsult/internal/types"
)

// Collection names
const (
	CollectionUsers         = "users"
	CollectionAttendance    = "attendance"
	CollectionAssignments   = "assignments"
	CollectionCompletions   = "completions"
	CollectionTrainings     = "trainings"
	CollectionSkillSets     = "skillsets"
	CollectionOpportunities = "opportunities"
	CollectionInvites       = "invites"
	CollectionAccepts       = "accepts"
	CollectionResumes       = "resumes"
)

// Repository reads and writes domain records.
type Repository struct {
	store docstore.Store
}

// New creates a repository over store.
func New(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Store returns the underlying document store.
func (r *Repository) Store() docstore.Store {
	return r.store
}

// get decodes one document into a fresh T, or returns nil when absent.
func get[T any](ctx context.Context, s docstore.Store, collection, key string) (*T, error) {
	var v T
	found, err := s.Get(ctx, collection, key, &v)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &v, nil
}

// -----------------------------------------------------------------------------
// Persons
// -----------------------------------------------------------------------------

// SavePerson inserts or replaces a person.
func (r *Repository) SavePerson(ctx context.Context, p *types.Person) error {
	return r.store.Put(ctx, CollectionUsers, p.ID, p)
}

// GetPerson retrieves a person by ID
func (r *Repository) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	return get[types.Person](ctx, r.store, CollectionUsers, id)
}

// FindPersonByEmail retrieves a person by normalized email
func (r *Repository) FindPersonByEmail(ctx context.Context, email string) (*types.Person, error) {
	persons, err := docstore.FindAll[types.Person](ctx, r.store, CollectionUsers,
		docstore.Filter{"email": types.NormalizeEmail(email)})
	if err != nil {
		return nil, fmt.Errorf("failed to find person by email: %w", err)
	}
	if len(persons) == 0 {
		return nil, nil
	}
	return &persons[0], nil
}

// ListPersonsByRole returns every person with the given role
func (r *Repository) ListPersonsByRole(ctx context.Context, role types.Role) ([]types.Person, error) {
	persons, err := docstore.FindAll[types.Person](ctx, r.store, CollectionUsers,
		docstore.Filter{"role": string(role)})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s persons: %w", role, err)
	}
	return persons, nil
}

// CountPersonsByRole counts the persons with the given role
func (r *Repository) CountPersonsByRole(ctx context.Context, role types.Role) (int64, error) {
	return r.store.Count(ctx, CollectionUsers, docstore.Filter{"role": string(role)})
}

// -----------------------------------------------------------------------------
// Attendance
// -----------------------------------------------------------------------------

// GetAttendance retrieves a person's attendance record
func (r *Repository) GetAttendance(ctx context.Context, userID string) (*types.AttendanceRecord, error) {
	return get[types.AttendanceRecord](ctx, r.store, CollectionAttendance, userID)
}

// SaveAttendance replaces a person's attendance record
func (r *Repository) SaveAttendance(ctx context.Context, rec *types.AttendanceRecord) error {
	return r.store.Put(ctx, CollectionAttendance, rec.UserID, rec)
}

// -----------------------------------------------------------------------------
// Assignments and completions
// -----------------------------------------------------------------------------

// GetAssignment retrieves a person's assigned trainings
func (r *Repository) GetAssignment(ctx context.Context, userID string) (*types.TrainingAssignment, error) {
	return get[types.TrainingAssignment](ctx, r.store, CollectionAssignments, userID)
}

// SaveAssignment replaces a person's assigned trainings
func (r *Repository) SaveAssignment(ctx context.Context, a *types.TrainingAssignment) error {
	return r.store.Put(ctx, CollectionAssignments, a.UserID, a)
}

// ListAssignments returns every assignment record
func (r *Repository) ListAssignments(ctx context.Context) ([]types.TrainingAssignment, error) {
	return docstore.FindAll[types.TrainingAssignment](ctx, r.store, CollectionAssignments, nil)
}

// GetCompletion retrieves a person's completed trainings
func (r *Repository) GetCompletion(ctx context.Context, userID string) (*types.TrainingCompletion, error) {
	return get[types.TrainingCompletion](ctx, r.store, CollectionCompletions, userID)
}

// SaveCompletion replaces a person's completed trainings
func (r *Repository) SaveCompletion(ctx context.Context, c *types.TrainingCompletion) error {
	return r.store.Put(ctx, CollectionCompletions, c.UserID, c)
}

// -----------------------------------------------------------------------------
// Training catalog
// -----------------------------------------------------------------------------

// SaveTraining inserts or replaces a catalog training
func (r *Repository) SaveTraining(ctx context.Context, t *types.Training) error {
	return r.store.Put(ctx, CollectionTrainings, t.ID, t)
}

// GetTraining retrieves a catalog training by ID
func (r *Repository) GetTraining(ctx context.Context, id string) (*types.Training, error) {
	return get[types.Training](ctx, r.store, CollectionTrainings, id)
}

// ListTrainings returns the whole catalog ordered by start date
func (r *Repository) ListTrainings(ctx context.Context) ([]types.Training, error) {
	trainings, err := docstore.FindAll[types.Training](ctx, r.store, CollectionTrainings, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(trainings, func(i, j int) bool {
		return trainings[i].StartDate.Before(trainings[j].StartDate)
	})
	return trainings, nil
}

// -----------------------------------------------------------------------------
// Skill sets and resumes
// -----------------------------------------------------------------------------

// GetSkillSet retrieves a person's skill set
func (r *Repository) GetSkillSet(ctx context.Context, userID string) (*types.SkillSet, error) {
	return get[types.SkillSet](ctx, r.store, CollectionSkillSets, userID)
}

// SaveSkillSet replaces a person's skill set
func (r *Repository) SaveSkillSet(ctx context.Context, s *types.SkillSet) error {
	return r.store.Put(ctx, CollectionSkillSets, s.UserID, s)
}

// ListSkillSets returns every skill set
func (r *Repository) ListSkillSets(ctx context.Context) ([]types.SkillSet, error) {
	return docstore.FindAll[types.SkillSet](ctx, r.store, CollectionSkillSets, nil)
}

// GetResume retrieves a person's active resume record
func (r *Repository) GetResume(ctx context.Context, userID string) (*types.ResumeRecord, error) {
	return get[types.ResumeRecord](ctx, r.store, CollectionResumes, userID)
}

// SaveResume replaces a person's active resume record
func (r *Repository) SaveResume(ctx context.Context, rec *types.ResumeRecord) error {
	return r.store.Put(ctx, CollectionResumes, rec.UserID, rec)
}

// -----------------------------------------------------------------------------
// Opportunities, invites and accepts
// -----------------------------------------------------------------------------

// SaveOpportunity inserts or replaces an opportunity
func (r *Repository) SaveOpportunity(ctx context.Context, o *types.Opportunity) error {
	return r.store.Put(ctx, CollectionOpportunities, o.ID, o)
}

// GetOpportunity retrieves an opportunity by ID
func (r *Repository) GetOpportunity(ctx context.Context, id string) (*types.Opportunity, error) {
	return get[types.Opportunity](ctx, r.store, CollectionOpportunities, id)
}

// ListOpportunitiesByManager returns a manager's opportunities, newest
// posting first
func (r *Repository) ListOpportunitiesByManager(ctx context.Context, managerID string) ([]types.Opportunity, error) {
	opps, err := docstore.FindAll[types.Opportunity](ctx, r.store, CollectionOpportunities,
		docstore.Filter{"hiringManagerId": managerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].PostingDate.After(opps[j].PostingDate)
	})
	return opps, nil
}

// GetInvites retrieves a person's pending invites
func (r *Repository) GetInvites(ctx context.Context, userID string) (*types.InviteRecord, error) {
	return get[types.InviteRecord](ctx, r.store, CollectionInvites, userID)
}

// SaveInvites replaces a person's pending invites
func (r *Repository) SaveInvites(ctx context.Context, rec *types.InviteRecord) error {
	return r.store.Put(ctx, CollectionInvites, rec.UserID, rec)
}

// AcceptKey is the document key of one person's acceptance of one opportunity.
func AcceptKey(userID, opportunityID string) string {
	return userID + ":" + opportunityID
}

// GetAccept retrieves one acceptance
func (r *Repository) GetAccept(ctx context.Context, userID, opportunityID string) (*types.AcceptRecord, error) {
	return get[types.AcceptRecord](ctx, r.store, CollectionAccepts, AcceptKey(userID, opportunityID))
}

// SaveAccept stores one acceptance
func (r *Repository) SaveAccept(ctx context.Context, rec *types.AcceptRecord) error {
	return r.store.Put(ctx, CollectionAccepts, AcceptKey(rec.UserID, rec.OpportunityID), rec)
}

// ListAccepts returns every acceptance of one person
func (r *Repository) ListAccepts(ctx context.Context, userID string) ([]types.AcceptRecord, error) {
	recs, err := docstore.FindAll[types.AcceptRecord](ctx, r.store, CollectionAccepts,
		docstore.Filter{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list accepts: %w", err)
	}
	return recs, nil
}
