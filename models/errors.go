package models

import (
	"errors"
	"fmt"
)

// Error codes used across the resolution and extraction pipeline.
const (
	ErrCodeAdapterUnavailable = "RESOLVE_ADAPTER_UNAVAILABLE"
	ErrCodeAdapterTransport   = "RESOLVE_ADAPTER_TRANSPORT"
	ErrCodeExtractTransport   = "EXTRACT_TRANSPORT"
	ErrCodeTimeout            = "EXTRACT_TIMEOUT"
	ErrCodeNavigation         = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash       = "BROWSER_CRASH"
	ErrCodeInvalidInput       = "INVALID_INPUT"
)

// ErrUnconfigured is returned by a search provider whose credentials are
// missing. The resolver skips the provider without retrying it.
var ErrUnconfigured = errors.New("provider not configured")

// PipelineError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type PipelineError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(code, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// IsTransport reports whether err is a transport-class failure that the
// extraction retry loop is allowed to retry.
func IsTransport(err error) bool {
	var pe *PipelineError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Code {
	case ErrCodeExtractTransport, ErrCodeTimeout, ErrCodeNavigation, ErrCodeBrowserCrash:
		return true
	}
	return false
}
