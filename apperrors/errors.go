package apperrors

import "errors"

// Domain error kinds. Callers branch on these with errors.Is; controllers map
// them to HTTP statuses. Infrastructure failures are never wrapped in a kind.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidState       = errors.New("invalid state")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrConflict           = errors.New("conflict")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
)

// DomainError carries a kind plus context for the caller.
type DomainError struct {
	Kind    error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "unknown error"
}

// Unwrap makes the kind matchable via errors.Is
func (e *DomainError) Unwrap() error {
	return e.Kind
}

// WithDetails attaches context details to the error
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

// NewNotFound creates a not-found error with a message
func NewNotFound(message string) error {
	return &DomainError{Kind: ErrNotFound, Message: message}
}

// NewValidationFailed creates a validation error with a message
func NewValidationFailed(message string) error {
	return &DomainError{Kind: ErrValidationFailed, Message: message}
}

// NewInvalidState creates an invalid-state error with a message
func NewInvalidState(message string) error {
	return &DomainError{Kind: ErrInvalidState, Message: message}
}

// NewPreconditionFailed creates a precondition error with a message
func NewPreconditionFailed(message string) error {
	return &DomainError{Kind: ErrPreconditionFailed, Message: message}
}

// NewConflict creates a conflict error with a message
func NewConflict(message string) error {
	return &DomainError{Kind: ErrConflict, Message: message}
}

// HTTPStatus maps a domain error kind to an HTTP status code.
// Unrecognized errors map to 500 so infrastructure failures stay generic.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrValidationFailed):
		return 400
	case errors.Is(err, ErrInvalidState):
		return 409
	case errors.Is(err, ErrPreconditionFailed):
		return 412
	case errors.Is(err, ErrConflict):
		return 409
	case errors.Is(err, ErrInvalidCredentials):
		return 401
	case errors.Is(err, ErrPermissionDenied):
		return 403
	default:
		return 500
	}
}

// IsDomain reports whether err is one of the recoverable domain kinds.
func IsDomain(err error) bool {
	return HTTPStatus(err) != 500
}
