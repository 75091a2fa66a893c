// Package apperrors defines the error classes returned by the store and
// service layers and how they surface over HTTP.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ErrInternal is the generic failure reported to clients without detail.
var ErrInternal = errors.New("internal server error")

// RequiredFieldError reports a missing mandatory field.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("%s: this field is required", e.Field)
}

// RangeError reports a numeric or length value outside its bounds.
type RangeError struct {
	Field   string
	Message string
}

func (e *RangeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: value out of range", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FormatError reports a value that does not have the expected shape, such as
// a malformed email address or image payload.
type FormatError struct {
	Field   string
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ReferenceError lists ids that do not resolve to stored entities.
type ReferenceError struct {
	Field string
	IDs   []uint
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: unknown ids %s", e.Field, joinIDs(e.IDs))
}

// DuplicateError lists ids submitted more than once.
type DuplicateError struct {
	Field string
	IDs   []uint
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: duplicate ids %s", e.Field, joinIDs(e.IDs))
}

// ConflictError reports an edge or unique key that already exists.
type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s already exists", e.Resource)
	}
	return e.Message
}

// NotFoundError reports a missing entity or edge.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// InvalidOperationError reports a request that is well formed but not allowed,
// such as following yourself or a malformed paging parameter.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return e.Message
}

// ForbiddenError reports a principal acting on something it does not own.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// UnauthorizedError reports missing or invalid credentials.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// Constructors keep call sites short.

func Required(field string) error { return &RequiredFieldError{Field: field} }

func OutOfRange(field, msg string) error { return &RangeError{Field: field, Message: msg} }

func Malformed(field, msg string) error { return &FormatError{Field: field, Message: msg} }

func NotFound(resource string, id any) error { return &NotFoundError{Resource: resource, ID: id} }

func Conflict(resource, msg string) error { return &ConflictError{Resource: resource, Message: msg} }

func Invalid(format string, args ...any) error {
	return &InvalidOperationError{Message: fmt.Sprintf(format, args...)}
}

func Forbidden(msg string) error { return &ForbiddenError{Message: msg} }

func Unauthorized(msg string) error { return &UnauthorizedError{Message: msg} }

// HTTPStatus maps an error onto the status code the REST surface returns.
func HTTPStatus(err error) int {
	var (
		required  *RequiredFieldError
		rng       *RangeError
		format    *FormatError
		ref       *ReferenceError
		dup       *DuplicateError
		conflict  *ConflictError
		notFound  *NotFoundError
		invalid   *InvalidOperationError
		forbidden *ForbiddenError
		unauth    *UnauthorizedError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &required), errors.As(err, &rng), errors.As(err, &format),
		errors.As(err, &ref),
		errors.As(err, &dup), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &unauth):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// IsInternal reports whether err falls outside the known taxonomy.
func IsInternal(err error) bool {
	return err != nil && HTTPStatus(err) == http.StatusInternalServerError
}

// FromDB translates store errors into taxonomy errors. Unknown errors are
// returned unchanged so callers can wrap them as internal failures.
func FromDB(err error, resource string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{Resource: resource}
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return &ConflictError{Resource: resource}
	case errors.Is(err, gorm.ErrCheckConstraintViolated), isCheckViolation(err):
		return &RangeError{Field: resource, Message: "violates a storage constraint"}
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func isCheckViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "CHECK constraint failed") ||
		strings.Contains(msg, "violates check constraint")
}

func joinIDs(ids []uint) string {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprint(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
