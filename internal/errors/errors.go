// Package errors defines the error taxonomy shared by the intake components.
//
// Three kinds reach the user:
//   - ConfigMissingError: a credential or endpoint URL did not resolve
//   - UpstreamError: a remote call failed or its reply had the wrong shape
//   - NoDataError: an operation needs an analyzed record and there is none
//
// Callers branch on kind with the IsX helpers, which walk the wrap chain.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrEmptyInput is returned when the complaint text is blank.
var ErrEmptyInput = stderrors.New("complaint text is empty")

// ErrStaleRecord is returned when a refinement reply arrives after the
// record it was computed for has been replaced.
var ErrStaleRecord = stderrors.New("record was replaced while the request was in flight")

// ConfigMissingError indicates a required configuration field is absent.
type ConfigMissingError struct {
	Field string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("config missing: %s is not configured", e.Field)
}

// NewConfigMissing creates a config missing error for the named field.
func NewConfigMissing(field string) *ConfigMissingError {
	return &ConfigMissingError{Field: field}
}

// UpstreamError wraps failures talking to an external service.
//
// StatusCode is zero when no HTTP response was received.
type UpstreamError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := "upstream error: " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error for error chain inspection
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstream creates an upstream error with context
func NewUpstream(msg string, err error) *UpstreamError {
	return &UpstreamError{Message: msg, Err: err}
}

// NewUpstreamStatus creates an upstream error for a non-success HTTP status.
func NewUpstreamStatus(status int, body string) *UpstreamError {
	return &UpstreamError{Message: body, StatusCode: status}
}

// NoDataError indicates that no analyzed record is available yet.
type NoDataError struct {
	Message string
}

func (e *NoDataError) Error() string {
	return "no data: " + e.Message
}

// NewNoData creates a no data error with context
func NewNoData(msg string) *NoDataError {
	return &NoDataError{Message: msg}
}

// IsConfigMissing checks if the error chain contains a ConfigMissingError
func IsConfigMissing(err error) bool {
	var target *ConfigMissingError
	return stderrors.As(err, &target)
}

// IsUpstream checks if the error chain contains an UpstreamError
func IsUpstream(err error) bool {
	var target *UpstreamError
	return stderrors.As(err, &target)
}

// IsNoData checks if the error chain contains a NoDataError
func IsNoData(err error) bool {
	var target *NoDataError
	return stderrors.As(err, &target)
}
