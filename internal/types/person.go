// Package types provides the document shapes shared by the store, the
// aggregation packages and the HTTP API.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"
)

// Role distinguishes consultants from managers.
type Role string

// Role values
const (
	RoleConsultant Role = "consultant"
	RoleManager    Role = "manager"
)

// Person is a registered user of the system.
type Person struct {
	ID                string     `json:"id" bson:"id"`
	Name              string     `json:"name" bson:"name"`
	Email             string     `json:"email" bson:"email"`
	PasswordHash      string     `json:"passwordHash" bson:"passwordHash"`
	Role              Role       `json:"role" bson:"role"`
	MobileNumber      string     `json:"mobileNumber,omitempty" bson:"mobileNumber,omitempty"`
	Location          string     `json:"location,omitempty" bson:"location,omitempty"`
	City              string     `json:"city,omitempty" bson:"city,omitempty"`
	State             string     `json:"state,omitempty" bson:"state,omitempty"`
	Country           string     `json:"country,omitempty" bson:"country,omitempty"`
	ImageURL          string     `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	OnBench           bool       `json:"onBench" bson:"onBench"`
	YearsOfExperience float64    `json:"yearsOfExperience" bson:"yearsOfExperience"`
	DOJ               *time.Time `json:"doj,omitempty" bson:"doj,omitempty"`
	CreatedAt         time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Profile is the API view of a Person; it never carries the password hash.
type Profile struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              Role       `json:"role"`
	MobileNumber      string     `json:"mobileNumber,omitempty"`
	Location          string     `json:"location,omitempty"`
	City              string     `json:"city,omitempty"`
	State             string     `json:"state,omitempty"`
	Country           string     `json:"country,omitempty"`
	ImageURL          string     `json:"imageUrl,omitempty"`
	OnBench           bool       `json:"onBench"`
	YearsOfExperience float64    `json:"yearsOfExperience"`
	DOJ               *time.Time `json:"doj,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Profile returns the public view of p. A nil person yields nil.
func (p *Person) Profile() *Profile {
	if p == nil {
		return nil
	}
	return &Profile{
		ID:                p.ID,
		Name:              p.Name,
		Email:             p.Email,
		Role:              p.Role,
		MobileNumber:      p.MobileNumber,
		Location:          p.Location,
		City:              p.City,
		State:             p.State,
		Country:           p.Country,
		ImageURL:          p.ImageURL,
		OnBench:           p.OnBench,
		YearsOfExperience: p.YearsOfExperience,
		DOJ:               p.DOJ,
		CreatedAt:         p.CreatedAt,
	}
}

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterRequest is the body of a registration call.
type RegisterRequest struct {
	Name              string     `json:"name" validate:"required"`
	Email             string     `json:"email" validate:"required,email"`
	Password          string     `json:"password" validate:"required,min=8"`
	Role              Role       `json:"role" validate:"required,oneof=consultant manager"`
	MobileNumber      string     `json:"mobileNumber,omitempty"`
	Location          string     `json:"location,omitempty"`
	City              string     `json:"city,omitempty"`
	State             string     `json:"state,omitempty"`
	Country           string     `json:"country,omitempty"`
	ImageURL          string     `json:"imageUrl,omitempty" validate:"omitempty,url"`
	OnBench           bool       `json:"onBench"`
	YearsOfExperience float64    `json:"yearsOfExperience" validate:"gte=0"`
	DOJ               *time.Time `json:"doj,omitempty"`
}

// UpdateProfileRequest carries the contact fields a person may change.
type UpdateProfileRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"required"`
}

// Normalize canonicalizes the email and trims the name.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

// Normalize canonicalizes the email and trims the name.
func (r *UpdateProfileRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

// ConsultantSummary is the basic directory entry for a consultant.
type ConsultantSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
