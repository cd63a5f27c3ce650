package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternal          = errors.New("internal error")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPersistence       = errors.New("persistence failure")
)

// Validation sub-kinds. Each one matches ErrValidation through errors.Is.
var (
	ErrDuplicateField = fmt.Errorf("duplicate field: %w", ErrValidation)
	ErrOutOfRange     = fmt.Errorf("value out of range: %w", ErrValidation)
	ErrRequiredField  = fmt.Errorf("required field missing: %w", ErrValidation)
	ErrForeignKey     = fmt.Errorf("foreign key violation: %w", ErrValidation)
	ErrInvalidFormat  = fmt.Errorf("invalid format: %w", ErrValidation)
)

// AppError represents a structured application error with HTTP status mapping.
//
// Field names the primary attribute that failed. Fields carries every failing
// attribute with a short reason, so a caller can highlight all of them at once.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for the given entity type and id.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// DuplicateField creates a 409 error for a single uniqueness collision.
func DuplicateField(resource, field, value string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_FIELD",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Field:   field,
		Fields:  map[string]string{field: "has already been taken"},
		Status:  http.StatusConflict,
		Err:     ErrDuplicateField,
	}
}

// DuplicateFields creates a 409 error reporting every collided field. The
// first entry of fields becomes the primary Field.
func DuplicateFields(resource string, fields ...string) *AppError {
	if len(fields) == 0 {
		return nil
	}
	all := make(map[string]string, len(fields))
	for _, f := range fields {
		all[f] = "has already been taken"
	}
	return &AppError{
		Code:    "DUPLICATE_FIELD",
		Message: fmt.Sprintf("%s with the same %s already exists", resource, strings.Join(fields, ", ")),
		Field:   fields[0],
		Fields:  all,
		Status:  http.StatusConflict,
		Err:     ErrDuplicateField,
	}
}

// OutOfRange creates a 422 error for a value outside its allowed bound.
func OutOfRange(field, bound string) *AppError {
	return &AppError{
		Code:    "OUT_OF_RANGE",
		Message: fmt.Sprintf("%s is out of range: %s", field, bound),
		Field:   field,
		Fields:  map[string]string{field: bound},
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrOutOfRange,
	}
}

// RequiredField creates a 422 error for a missing mandatory attribute.
func RequiredField(field string) *AppError {
	return &AppError{
		Code:    "REQUIRED_FIELD",
		Message: fmt.Sprintf("%s is required", field),
		Field:   field,
		Fields:  map[string]string{field: "is required"},
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrRequiredField,
	}
}

// ForeignKey creates a 422 error for a reference to a missing entity.
func ForeignKey(field, value string) *AppError {
	msg := fmt.Sprintf("%s does not reference an existing record", field)
	if value != "" {
		msg = fmt.Sprintf("%s %q does not reference an existing record", field, value)
	}
	return &AppError{
		Code:    "FOREIGN_KEY",
		Message: msg,
		Field:   field,
		Fields:  map[string]string{field: "references a missing record"},
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrForeignKey,
	}
}

// InvalidFormat creates a 422 error for a value that does not parse as the
// expected shape.
func InvalidFormat(field, expected string) *AppError {
	return &AppError{
		Code:    "INVALID_FORMAT",
		Message: fmt.Sprintf("%s must be %s", field, expected),
		Field:   field,
		Fields:  map[string]string{field: "must be " + expected},
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrInvalidFormat,
	}
}

// InvalidTransition creates a 409 error for a state change that is not an
// edge of the state machine.
func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("cannot transition from %q to %q", from, to),
		Fields:  map[string]string{"from": from, "to": to},
		Status:  http.StatusConflict,
		Err:     ErrInvalidTransition,
	}
}

// InvalidInput creates a 400 error for a malformed request.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Persistence creates a 503 error for a storage failure. The cause is kept in
// the chain so callers can still inspect it.
func Persistence(op string, cause error) *AppError {
	return &AppError{
		Code:    "PERSISTENCE_ERROR",
		Message: "the data store is unavailable",
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%s: %w: %w", op, ErrPersistence, cause),
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Merge folds several field-attributed errors into one validation error. It
// returns nil for no errors and the single error unchanged for one.
func Merge(errs ...*AppError) error {
	var present []*AppError
	for _, e := range errs {
		if e != nil {
			present = append(present, e)
		}
	}
	switch len(present) {
	case 0:
		return nil
	case 1:
		return present[0]
	}

	fields := make(map[string]string)
	for _, e := range present {
		for k, v := range e.Fields {
			fields[k] = v
		}
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: "invalid fields: " + strings.Join(names, ", "),
		Field:   present[0].Field,
		Fields:  fields,
		Status:  http.StatusUnprocessableEntity,
		Err:     present[0].Err,
	}
}

// FieldOf returns the primary field of an AppError in the chain, or "".
func FieldOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateField), errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
