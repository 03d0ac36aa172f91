package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user lacks the permission required
// for the attempted operation.
var ErrForbidden = errors.New("operation forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRootNodeProtected indicates an update or delete attempt on one of the
// four protected root nodes of a budget.
var ErrRootNodeProtected = errors.New("root node is protected")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("resource conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside the wrapped cause so
// the handler layer can map failures without string matching.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates a 404 error that matches ErrNotFound under errors.Is.
func NewNotFoundError(message string) *AppError {
	return NewAppError(404, message, ErrNotFound)
}

// NewForbiddenError creates a 403 error that matches ErrForbidden under errors.Is.
func NewForbiddenError(message string) *AppError {
	return NewAppError(403, message, ErrForbidden)
}

// NewUnauthorizedError creates a 401 error that matches ErrUnauthorized under errors.Is.
func NewUnauthorizedError(message string) *AppError {
	return NewAppError(401, message, ErrUnauthorized)
}

// NewConflictError creates a 409 error that matches ErrDuplicate under errors.Is.
// It is the mapping target for unique-constraint violations.
func NewConflictError(message string) *AppError {
	return NewAppError(409, message, ErrDuplicate)
}

// NewRootProtectedError creates a 409 error that matches ErrRootNodeProtected
// under errors.Is.
func NewRootProtectedError(message string) *AppError {
	return NewAppError(409, message, ErrRootNodeProtected)
}

// NewValidationFailedError creates a 400 error that matches ErrValidation under errors.Is.
func NewValidationFailedError(message string) *AppError {
	return NewAppError(400, message, ErrValidation)
}

// NewInternalServerError creates a 500 error wrapping the given cause.
func NewInternalServerError(message string, err error) *AppError {
	return NewAppError(500, message, err)
}
