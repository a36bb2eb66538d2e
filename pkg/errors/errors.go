// Package errors provides structured error types for the photo booth.
//
// Every failure in the capture and compositing core carries a machine-readable
// code so callers can decide how to recover without parsing messages:
//   - FEED_UNAVAILABLE: the frame source could not produce a frame; the
//     sequencer stays retryable
//   - DECORATION_LOAD_FAILURE: an overlay or sticker could not be loaded; the
//     composite proceeds without it
//   - INVALID_LAYOUT: an unknown layout was requested; callers fall back to the
//     default layout
//   - SLOT_OUT_OF_RANGE: retake or upload addressed a slot outside the layout
//   - SEQUENCER_BUSY: a start or retake arrived while a capture was running
//
// None of these are fatal. The worst outcome is a degraded composite or a
// stalled sequencer awaiting a retry.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSlotOutOfRange, "slot %d outside 0..%d", k, n-1)
//	if errors.Is(err, errors.ErrCodeSlotOutOfRange) {
//	    // ignore the request
//	}
//
//	err := errors.Wrap(errors.ErrCodeFeedUnavailable, cause, "snapshot slot %d", k)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Capture errors
	ErrCodeFeedUnavailable Code = "FEED_UNAVAILABLE"
	ErrCodeSequencerBusy   Code = "SEQUENCER_BUSY"
	ErrCodeSlotOutOfRange  Code = "SLOT_OUT_OF_RANGE"
	ErrCodeIncompleteSlots Code = "INCOMPLETE_SLOTS"

	// Composite errors
	ErrCodeDecorationLoad    Code = "DECORATION_LOAD_FAILURE"
	ErrCodeInvalidDecoration Code = "INVALID_DECORATION"
	ErrCodeSuperseded        Code = "SUPERSEDED"

	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidLayout    Code = "INVALID_LAYOUT"
	ErrCodeInvalidCountdown Code = "INVALID_COUNTDOWN"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeTimeout      Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns advisory text for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Code {
		case ErrCodeFeedUnavailable:
			return e.Message + " (check the camera and try again)"
		case ErrCodeSequencerBusy:
			return e.Message + " (wait for the current shot to finish)"
		}
		return e.Message
	}
	return err.Error()
}

// Retryable reports whether the failure leaves the caller free to re-issue
// the same request. Feed and timeout failures are retryable; validation
// failures are not.
func Retryable(err error) bool {
	switch GetCode(err) {
	case ErrCodeFeedUnavailable, ErrCodeTimeout, ErrCodeSequencerBusy:
		return true
	}
	return false
}
