// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain failure unwraps to one of these.
var (
	ErrValidation          = errors.New("validation error")
	ErrAlreadyExists       = errors.New("already exists")
	ErrAlreadyVoted        = errors.New("already voted")
	ErrNotFound            = errors.New("not found")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// Error is a domain failure with a message fit to show the user.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsDomainError reports whether err is a domain failure rather than a store fault.
func IsDomainError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
