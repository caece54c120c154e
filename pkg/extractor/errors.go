// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an extraction failure.
type ErrorKind int

const (
	// Unknown is any parsing failure that is neither a decode failure nor a
	// missing capability.
	Unknown ErrorKind = iota
	// DecodeFailure means the bytes cannot be interpreted as the hinted format.
	DecodeFailure
	// DependencyMissing means the capability required by the format is not
	// available in this process.
	DependencyMissing
)

func (k ErrorKind) String() string {
	switch k {
	case DecodeFailure:
		return "decode failure"
	case DependencyMissing:
		return "dependency missing"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against an *Error.
var (
	ErrUnknown           = errors.New("extraction failed")
	ErrDecodeFailure     = errors.New("decode failure")
	ErrDependencyMissing = errors.New("dependency missing")
)

// Error is the only error type returned by Extractor.Extract.
type Error struct {
	Kind   ErrorKind
	Format FormatKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("extract %s: %s", e.Format, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels so callers can write
// errors.Is(err, extractor.ErrDecodeFailure).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnknown:
		return e.Kind == Unknown
	case ErrDecodeFailure:
		return e.Kind == DecodeFailure
	case ErrDependencyMissing:
		return e.Kind == DependencyMissing
	}
	return false
}

// NewDecodeError builds a DecodeFailure error. OCR backends use it to report
// images the service could not read.
func NewDecodeError(format FormatKind, detail string, err error) *Error {
	return &Error{Kind: DecodeFailure, Format: format, Detail: detail, Err: err}
}

func missingCapability(format FormatKind, c Capability) *Error {
	return &Error{
		Kind:   DependencyMissing,
		Format: format,
		Detail: fmt.Sprintf("capability %q is not available", c),
	}
}

// KindOf returns the ErrorKind of err, or Unknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// asError normalizes any handler error into an *Error for the given format.
func asError(format FormatKind, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		out := *e
		out.Format = format
		return &out
	}
	return &Error{Kind: Unknown, Format: format, Err: err}
}
