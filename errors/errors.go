// Package errors provides error handling for recipeviz.
//
// This package re-exports github.com/cockroachdb/errors so every package
// gets stack traces, wrapping, and user-facing hints from one import:
//
//	if err := client.Fetch(ctx, req); err != nil {
//	    return errors.Wrap(err, "failed to fetch dataset")
//	}
//
//	return errors.WithHint(err, "is the search backend running?")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Sentinel errors shared across packages. Wrap them to add context while
// keeping errors.Is working.
var (
	// ErrInvalidRequest indicates malformed search parameters or input
	ErrInvalidRequest = New("invalid request")

	// ErrServiceUnavailable indicates the search backend could not be reached
	ErrServiceUnavailable = New("service unavailable")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrClosed indicates an operation on a closed session
	ErrClosed = New("closed")
)

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsServiceUnavailableError checks if an error is or wraps ErrServiceUnavailable
func IsServiceUnavailableError(err error) bool {
	return err != nil && Is(err, ErrServiceUnavailable)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// WrapServiceUnavailable marks err as a backend availability failure
func WrapServiceUnavailable(err error, context string) error {
	return Wrap(Wrap(ErrServiceUnavailable, err.Error()), context)
}
