package domain

import (
	"context"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeUnavailable      ErrorCode = "UNAVAILABLE"
	CodeFailedPrecond    ErrorCode = "FAILED_PRECONDITION"
	CodeInternal         ErrorCode = "INTERNAL"
	CodeDeadlineExceeded ErrorCode = "DEADLINE_EXCEEDED"
)

// Request failure sentinels. NoConfidentMatch is deliberately absent: it is
// a successful outcome carried by RecommendationResult.Message, not an error.
var (
	ErrMissingCredential     = errors.New("model API credential is not configured")
	ErrInvalidQuery          = errors.New("query must not be empty")
	ErrCatalogUnavailable    = errors.New("tool catalog is unavailable")
	ErrNoValidToolsInCatalog = errors.New("tool catalog contains no usable records")
	ErrAIProcessingFailed    = errors.New("model response could not be processed")
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrInvalidQuery):
		return CodeInvalidArgument, true
	case errors.Is(err, ErrMissingCredential):
		return CodeFailedPrecond, true
	case errors.Is(err, ErrCatalogUnavailable),
		errors.Is(err, ErrNoValidToolsInCatalog),
		errors.Is(err, ErrAIProcessingFailed):
		return CodeUnavailable, true
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded, true
	default:
		return "", false
	}
}
