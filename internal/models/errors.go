package models

import "fmt"

// ValidationError reports missing or invalid input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// MissingField is the ValidationError for an absent required field
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "Missing " + field}
}

// NotFoundError means no record matched the id/owner combination
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// AuthorizationError means the record exists but belongs to another owner
type AuthorizationError struct {
	Entity string
}

func (e *AuthorizationError) Error() string {
	return e.Entity + " does not belong to the current user"
}

// OperationFailedError means a write ran but affected no records
type OperationFailedError struct {
	Operation string
}

func (e *OperationFailedError) Error() string {
	return "Failed to " + e.Operation
}

// UnauthorizedError means the access token is missing or invalid
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason == "" {
		return "Unauthorized"
	}
	return "Unauthorized: " + e.Reason
}

// Common errors
var (
	ErrProjectNotFound = &NotFoundError{Entity: "Project"}
	ErrWorkerNotFound  = &NotFoundError{Entity: "Worker"}
	ErrUserNotFound    = &NotFoundError{Entity: "User"}
)
