// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperr defines the typed error taxonomy shared by all services.
// Store and service code return *Error values; the API layer maps each Kind
// to an HTTP status exactly once.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for status mapping and logging.
type Kind int

// Error kinds, ordered roughly by who can fix them: the caller, the
// operator, or nobody in particular.
const (
	KindValidation Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindStorage
	KindInternal
)

// String returns the machine-readable code for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage_failure"
	default:
		return "internal_error"
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a KindValidation error.
func Validation(message string) *Error { return New(KindValidation, message) }

// Unauthenticated creates a KindUnauthenticated error.
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// Forbidden creates a KindForbidden error.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound creates a KindNotFound error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict creates a KindConflict error.
func Conflict(message string) *Error { return New(KindConflict, message) }

// Storage creates a KindStorage error wrapping the underlying cause.
func Storage(message string, err error) *Error { return Wrap(KindStorage, message, err) }

// Internal creates a KindInternal error wrapping the underlying cause.
func Internal(message string, err error) *Error { return Wrap(KindInternal, message, err) }

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is classified as the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf returns the caller-safe message for err. Unclassified errors
// yield a generic message so internals never leak to API clients.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "Internal server error"
}
