// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperror defines the error taxonomy returned to API clients.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error and selects its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Message is a client-facing text together with its translation ID.
type Message struct {
	ID   string
	Text string
}

// Messages shown to API clients. The English texts are the canonical ones.
var (
	MsgInvalidCredentials  = Message{ID: "invalid_credentials", Text: "Invalid credentials"}
	MsgNoToken             = Message{ID: "no_token", Text: "No token provided"}
	MsgInvalidToken        = Message{ID: "invalid_token", Text: "Invalid token"}
	MsgInvalidRefreshToken = Message{ID: "invalid_refresh_token", Text: "Invalid refresh token"}
	MsgEmailExists         = Message{ID: "email_exists", Text: "Email already exists"}
	MsgValidation          = Message{ID: "validation_failed", Text: "Validation error"}
	MsgInvalidBody         = Message{ID: "invalid_body", Text: "Invalid request body"}
	MsgBodyTooLarge        = Message{ID: "body_too_large", Text: "Request body too large"}
	MsgInternal            = Message{ID: "internal_error", Text: "An internal server error occurred"}
	MsgNotFound            = Message{ID: "not_found", Text: "Resource not found"}
	MsgMethodNotAllowed    = Message{ID: "method_not_allowed", Text: "Method not allowed"}
	MsgForbidden           = Message{ID: "forbidden", Text: "Access denied"}
	MsgTooManyRequests     = Message{ID: "too_many_requests", Text: "Too many requests"}
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an error with a client-facing message and an HTTP status.
type Error struct {
	Cause  error
	Msg    Message
	Fields []FieldError
	Kind   Kind
	status int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg.Text, e.Cause)
	}
	return e.Msg.Text
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Status returns the HTTP status code of the error.
func (e *Error) Status() int {
	if e.status != 0 {
		return e.status
	}
	return e.Kind.Status()
}

// WithCause returns a copy of e carrying cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

// New creates an error of the given kind.
func New(kind Kind, msg Message) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// WithStatus creates an error of the given kind that renders with an explicit status code.
func WithStatus(kind Kind, status int, msg Message) *Error {
	return &Error{Kind: kind, Msg: msg, status: status}
}

// Validation creates a 400 error listing the invalid fields.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Msg: MsgValidation, Fields: fields}
}

// Unauthorized creates a 401 error.
func Unauthorized(msg Message) *Error {
	return New(KindUnauthorized, msg)
}

// Conflict creates a 409 error.
func Conflict(msg Message) *Error {
	return New(KindConflict, msg)
}

// NotFound creates a 404 error.
func NotFound() *Error {
	return New(KindNotFound, MsgNotFound)
}

// Forbidden creates a 403 error.
func Forbidden() *Error {
	return New(KindForbidden, MsgForbidden)
}

// TooManyRequests creates a 429 error.
func TooManyRequests() *Error {
	return New(KindTooManyRequests, MsgTooManyRequests)
}

// Internal wraps cause into a 500 error with a generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Msg: MsgInternal, Cause: cause}
}

// As reports whether err contains an *Error and returns it.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
