// Package apperr defines the error kinds shared by every service. Each kind is
// terminal for the request that triggered it; only ErrStorageUnavailable may be
// retried by a caller.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrPermission         = errors.New("permission denied")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNegativeAmount     = errors.New("negative amount")
	ErrAuthentication     = errors.New("authentication failed")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Error carries the kind plus details a client can react to.
type Error struct {
	Kind    error
	Field   string
	Message string
	Allowed []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func Validation(field, message string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

// InvalidValue is a validation error listing the accepted values.
func InvalidValue(field, message string, allowed []string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: message, Allowed: allowed}
}

func NotFound(entity string, id any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

func Permission(message string) error {
	return &Error{Kind: ErrPermission, Message: message}
}

func InvalidTransition(from, to string) error {
	return &Error{Kind: ErrInvalidTransition, Message: fmt.Sprintf("cannot move order from %s to %s", from, to)}
}

func NegativeAmount(message string) error {
	return &Error{Kind: ErrNegativeAmount, Message: message}
}

func Authentication(message string) error {
	return &Error{Kind: ErrAuthentication, Message: message}
}

func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func StorageUnavailable(err error) error {
	return &Error{Kind: ErrStorageUnavailable, Message: "storage unavailable", Err: err}
}

var kinds = []struct {
	kind error
	code string
}{
	{ErrValidation, "validation_error"},
	{ErrNegativeAmount, "negative_amount"},
	{ErrNotFound, "not_found"},
	{ErrPermission, "permission_denied"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrAuthentication, "authentication_failed"},
	{ErrConflict, "conflict"},
	{ErrStorageUnavailable, "storage_unavailable"},
}

// Code returns a stable machine-readable code for err, or "internal_error".
func Code(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.code
		}
	}
	return "internal_error"
}

// Details extracts the first *Error in the chain, if any.
func Details(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
