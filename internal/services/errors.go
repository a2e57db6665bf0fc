package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorPersistence  ErrorCode = "persistence"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

// NewPersistenceError wraps a store failure for operation op.
func NewPersistenceError(op string, err error) error {
	return &ServiceError{Code: ErrorPersistence, Message: op + " failed", Err: err}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func IsNotFound(err error) bool    { return hasCode(err, ErrorNotFound) }
func IsInvalid(err error) bool     { return hasCode(err, ErrorInvalid) }
func IsConflict(err error) bool    { return hasCode(err, ErrorConflict) }
func IsPersistence(err error) bool { return hasCode(err, ErrorPersistence) }

func hasCode(err error, code ErrorCode) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == code
}

func invalidf(format string, args ...any) error {
	return NewInvalidError(fmt.Sprintf(format, args...))
}

func newID() string {
	return uuid.NewString()
}
