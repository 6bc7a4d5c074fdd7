// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jnode

import (
	"errors"
	"fmt"
)

// Errors reported by the parser. A parse failure is reported as a
// [*SyntaxError] wrapping one of these values, so callers can test the kind
// of failure with errors.Is.
var (
	ErrUnexpectedEnd  = errors.New("unexpected end of input")
	ErrInvalidString  = errors.New("invalid string")
	ErrInvalidObject  = errors.New("invalid object syntax")
	ErrInvalidArray   = errors.New("invalid array syntax")
	ErrInvalidBoolean = errors.New("invalid boolean literal")
	ErrInvalidNull    = errors.New("invalid null literal")
	ErrInvalidNumber  = errors.New("invalid number syntax")
	ErrInvalidUnicode = errors.New("invalid unicode escape")
	ErrInvalidTree    = errors.New("document is not an object or array")
	ErrExpectedValue  = errors.New("expected value")
	ErrTrailingData   = errors.New("unexpected data after document")
	ErrCapacity       = errors.New("capacity exceeded")
	ErrTooDeep        = errors.New("maximum nesting depth exceeded")
	ErrInvalidComment = errors.New("invalid comment")
)

// Errors reported by an Iterator.
var (
	ErrInvalidNode        = errors.New("invalid node")
	ErrInvalidKeyTarget   = errors.New("missing key target")
	ErrInvalidValueTarget = errors.New("missing value target")

	// ErrNoMoreElements marks the end of the sequence. It is the expected
	// result of iteration, not a failure.
	ErrNoMoreElements = errors.New("no more elements")
)

// SyntaxError is the concrete type of errors reported by the parser for
// invalid input.
type SyntaxError struct {
	Offset   int     // byte offset of the error in the input
	Location LineCol // line and column of Offset
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
