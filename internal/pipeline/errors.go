package pipeline

import (
	"errors"
	"fmt"
)

// ErrorCode classifies processing failures.
type ErrorCode string

const (
	// CodeFatalPrecondition aborts the run before any output is produced.
	CodeFatalPrecondition ErrorCode = "FATAL_PRECONDITION"
	// CodeEntryFailure skips one input image or page.
	CodeEntryFailure ErrorCode = "ENTRY_FAILURE"
	// CodeServiceFailure skips one page after the vision call failed.
	CodeServiceFailure ErrorCode = "SERVICE_FAILURE"
)

// ProcessingError is a classified failure.
type ProcessingError struct {
	Code    ErrorCode
	Page    string
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	var s string
	if e.Page != "" {
		s = fmt.Sprintf("%s: %s: %s", e.Code, e.Page, e.Message)
	} else {
		s = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Cause != nil {
		s += " (caused by: " + e.Cause.Error() + ")"
	}
	return s
}

func (e *ProcessingError) Unwrap() error { return e.Cause }

// Detail is the text reported in transcripts: the cause when there is one,
// otherwise the message.
func (e *ProcessingError) Detail() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// NewFatalPreconditionError reports a condition that prevents the run.
func NewFatalPreconditionError(message string, cause error) *ProcessingError {
	return &ProcessingError{Code: CodeFatalPrecondition, Message: message, Cause: cause}
}

// NewEntryFailureError reports an unreadable image or invalid geometry.
func NewEntryFailureError(page, message string, cause error) *ProcessingError {
	return &ProcessingError{Code: CodeEntryFailure, Page: page, Message: message, Cause: cause}
}

// NewServiceFailureError reports a failed vision call.
func NewServiceFailureError(page string, cause error) *ProcessingError {
	return &ProcessingError{Code: CodeServiceFailure, Page: page, Message: "vision analysis failed", Cause: cause}
}

// CodeOf returns the code of the first ProcessingError in err's chain, or
// the empty code.
func CodeOf(err error) ErrorCode {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	return CodeOf(err) == CodeFatalPrecondition
}

func detail(err error) string {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Detail()
	}
	return err.Error()
}
