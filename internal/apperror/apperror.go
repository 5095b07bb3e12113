// Package apperror defines the application's error taxonomy.
//
// Every error a service hands back to a handler is either an *AppError or an
// unexpected failure (treated as a server fault). An AppError wraps one of
// the sentinels below; the kind-specific sentinels in turn wrap a base
// sentinel, so callers can match at whichever level they care about:
//
//	errors.Is(err, ErrInvalidToken)   // exactly this kind
//	errors.Is(err, ErrUnauthorized)   // any authentication failure
package apperror

import (
	"errors"
	"fmt"
)

// Base sentinels. Each maps to one HTTP status in the handler layer.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
)

// Kind-specific sentinels.
var (
	ErrMissingField   = fmt.Errorf("missing field: %w", ErrValidation)
	ErrNoFile         = fmt.Errorf("no file: %w", ErrValidation)
	ErrDuplicateEmail = fmt.Errorf("duplicate email: %w", ErrConflict)

	ErrUnauthenticated   = fmt.Errorf("unauthenticated: %w", ErrUnauthorized)
	ErrInvalidCredential = fmt.Errorf("invalid credential: %w", ErrUnauthorized)
	ErrMissingToken      = fmt.Errorf("missing token: %w", ErrUnauthorized)
	ErrInvalidToken      = fmt.Errorf("invalid token: %w", ErrUnauthorized)
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// UserNotFound is the NotFound raised when a token's user no longer exists.
func UserNotFound(id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: "User not found",
		Field:   id,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// MissingField reports that one or more required request fields are absent.
func MissingField(field, message string) *AppError {
	return &AppError{
		Err:     ErrMissingField,
		Message: message,
		Field:   field,
	}
}

// NoFile reports an upload request that carried no file bytes.
func NoFile() *AppError {
	return &AppError{
		Err:     ErrNoFile,
		Message: "No file Uploaded",
		Field:   "file",
	}
}

// DuplicateEmail reports a registration for an address that already has an account.
func DuplicateEmail(email string) *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: fmt.Sprintf("email %s is already registered", email),
		Field:   "email",
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated is returned when no account matches the submitted email.
func Unauthenticated(message string) *AppError {
	return &AppError{Err: ErrUnauthenticated, Message: message}
}

// InvalidCredential is returned when a password does not match its stored hash.
func InvalidCredential(message string) *AppError {
	return &AppError{Err: ErrInvalidCredential, Message: message}
}

func MissingToken() *AppError {
	return &AppError{Err: ErrMissingToken, Message: "Access denied. No token provided."}
}

func InvalidToken(message string) *AppError {
	return &AppError{Err: ErrInvalidToken, Message: message}
}

// Unavailable reports that a downstream collaborator cannot serve the request.
func Unavailable(message string) *AppError {
	return &AppError{Err: ErrUnavailable, Message: message}
}
