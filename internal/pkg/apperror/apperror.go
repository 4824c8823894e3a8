// Package apperror classifies business-rule failures so the transport layer can map
// them to a status code and a localized message in one place.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind uint8

const (
	KindInvalid Kind = iota + 1
	KindNotFound
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid_request"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Code identifies the rule and keys the message
// catalogue; Format and Args render the default English text.
type Error struct {
	Kind   Kind
	Code   string
	Format string
	Args   []any
}

var (
	ErrInvalidRequest = &Error{Kind: KindInvalid}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrForbidden      = &Error{Kind: KindForbidden}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized}
)

func Invalid(code, format string) *Error {
	return &Error{Kind: KindInvalid, Code: code, Format: format}
}

func NotFound(code, format string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Format: format}
}

func Forbidden(code, format string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Format: format}
}

func Unauthorized(code, format string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Format: format}
}

func (e *Error) Error() string {
	if len(e.Args) == 0 {
		return e.Format
	}
	return fmt.Sprintf(e.Format, e.Args...)
}

// Is matches sentinels by code, and the bare kind markers (ErrNotFound, ...) by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return t.Code == e.Code
	}
	return t.Kind == e.Kind
}

// With returns a copy of the sentinel carrying message arguments.
func (e *Error) With(args ...any) *Error {
	cp := *e
	cp.Args = append([]any(nil), args...)
	return &cp
}

// As extracts the first classified error in the chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// HTTPStatus maps err to a response status; unclassified errors are server errors.
func HTTPStatus(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
