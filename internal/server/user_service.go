package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/intelliconsult/internal/config"
	"github.com/jonathan/intelliconsult/internal/repository"
	"github.com/jonathan/intelliconsult/internal/types"
)

// UserService provides business logic for person registration and profile updates
type UserService struct {
	repo           *repository.Repository
	passwordConfig *config.PasswordConfig
	now            func() time.Time
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(repo *repository.Repository, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		repo:           repo,
		passwordConfig: passwordConfig,
		now:            time.Now,
	}
}

// Register creates a new person with a hashed password
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.Profile, error) {
	email := types.NormalizeEmail(req.Email)

	existing, err := s.repo.FindPersonByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existing != nil {
		return nil, &ErrEmailAlreadyExists{Email: email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &types.Person{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              req.Role,
		MobileNumber:      req.MobileNumber,
		Location:          req.Location,
		City:              req.City,
		State:             req.State,
		Country:           req.Country,
		ImageURL:          req.ImageURL,
		OnBench:           req.OnBench,
		YearsOfExperience: req.YearsOfExperience,
		DOJ:               req.DOJ,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.SavePerson(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return p.Profile(), nil
}

// Get returns the public profile of a person
func (s *UserService) Get(ctx context.Context, id string) (*types.Profile, error) {
	p, err := s.requirePerson(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Profile(), nil
}

// UpdateProfile replaces a person's contact details
func (s *UserService) UpdateProfile(ctx context.Context, id string, req *types.UpdateProfileRequest) (*types.Profile, error) {
	p, err := s.requirePerson(ctx, id)
	if err != nil {
		return nil, err
	}

	email := types.NormalizeEmail(req.Email)
	if email != p.Email {
		owner, err := s.repo.FindPersonByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email existence: %w", err)
		}
		if owner != nil && owner.ID != p.ID {
			return nil, &ErrEmailAlreadyExists{Email: email}
		}
	}

	p.Name = req.Name
	p.Email = email
	p.MobileNumber = req.MobileNumber
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.SavePerson(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return p.Profile(), nil
}

// requirePerson loads a person that must exist
func (s *UserService) requirePerson(ctx context.Context, id string) (*types.Person, error) {
	p, err := s.repo.GetPerson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if p == nil {
		return nil, &ErrNotFound{Resource: "user", ID: id}
	}
	return p, nil
}

// requireRole loads a person that must exist and hold role
func (s *UserService) requireRole(ctx context.Context, id string, role types.Role) (*types.Person, error) {
	p, err := s.requirePerson(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != role {
		return nil, &ErrValidation{Field: "role", Message: fmt.Sprintf("user %s is not a %s", id, role)}
	}
	return p, nil
}
