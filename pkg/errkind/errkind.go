// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package errkind classifies the failures a batch run can produce.
//
// Callers are expected to branch on the Kind of an error, never on its
// message. Messages are user-visible and end up verbatim in result records
// and ledger transactions.
package errkind

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// Input marks a command that could not be decoded. The command is
	// skipped and the run continues.
	Input Kind = "input"

	// NotFound marks a user/account/card/commerciant lookup miss.
	NotFound Kind = "not-found"

	// Ownership marks an entity that exists but whose relationship to the
	// acting party is invalid.
	Ownership Kind = "ownership"

	// Operation marks a business rule violation (insufficient funds, frozen
	// card, below minimum balance, invalid plan transition, ...).
	Operation Kind = "operation"

	// Exchange marks a missing currency conversion path.
	Exchange Kind = "exchange"

	// Integrity marks a ledger referential-integrity violation.
	Integrity Kind = "integrity"
)

// Error is a classified domain error.
type Error struct {
	Kind Kind
	Msg  string

	wrapped error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.wrapped)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.wrapped
}

// E creates a classified error with a user-visible message.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Ef creates a classified error with a formatted user-visible message.
func Ef(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, wrapped: err}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Message returns the user-visible message of a classified error, or the
// plain Error() string for anything else.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
