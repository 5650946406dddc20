package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/intelliconsult/internal/attendance"
	"github.com/jonathan/intelliconsult/internal/insights"
	"github.com/jonathan/intelliconsult/internal/matching"
	"github.com/jonathan/intelliconsult/internal/mlclient"
)

// Error codes carried in every error body
const (
	CodeValidation = "validation"
	CodeNotFound   = "not_found"
	CodeConflict   = "conflict"
	CodeUpstream   = "upstream"
	CodeInternal   = "internal"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing record
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrConflict indicates a write that clashes with existing data
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _ := classify(err)
	return status
}

// ErrorCode returns the machine-readable code for an error
func ErrorCode(err error) string {
	_, code := classify(err)
	return code
}

func classify(err error) (int, string) {
	var (
		emailErr      *ErrEmailAlreadyExists
		validationErr *ErrValidation
		notFoundErr   *ErrNotFound
		conflictErr   *ErrConflict
		matchInputErr *matching.ValidationError
		fieldErrs     validator.ValidationErrors
		upstreamErr   *mlclient.UpstreamError
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError, CodeInternal
	case errors.As(err, &validationErr), errors.As(err, &matchInputErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest, CodeValidation
	case errors.As(err, &notFoundErr),
		errors.Is(err, attendance.ErrNoAssignments),
		errors.Is(err, attendance.ErrNoAttendance),
		errors.Is(err, insights.ErrNoSkillSet):
		return http.StatusNotFound, CodeNotFound
	case errors.As(err, &emailErr), errors.As(err, &conflictErr):
		return http.StatusConflict, CodeConflict
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway, CodeUpstream
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
