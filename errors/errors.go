package errors

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

// The human amount is malformed or has more fractional digits than the token supports
const InvalidAmount Status = "InvalidAmount"

// One of the route endpoints is not known in the selected environment
const NoRoute Status = "NoRoute"

// Both endpoints are known but no bridge topology connects them
const UnsupportedRoute Status = "UnsupportedRoute"

// The token cannot be quoted (and therefore not moved) on an edge
const FeeUnavailable Status = "FeeUnavailable"

// The bridge pre-flight check rejected the transfer
const ValidationFailed Status = "ValidationFailed"

// The wallet or the user refused to sign
const SignatureDeclined Status = "SignatureDeclined"

// The RPC node rejected the signed payload
const SubmissionFailed Status = "SubmissionFailed"

// The transaction was included but failed to execute
const DispatchFailed Status = "DispatchFailed"

// The chain reported it gave up waiting for finality
const ConfirmationTimeout Status = "ConfirmationTimeout"

// The caller cancelled before the next edge could start
const Cancelled Status = "Cancelled"

// A resume names a transfer with no confirmed phases for these parameters
const UnknownTransfer Status = "UnknownTransfer"

// No outcome for this error known
const UnknownError Status = "UnknownError"

type Error struct {
	Status  Status
	Message string
	// Diagnostic lines reported by a pre-flight validation
	Logs []string
	// Underlying cause, if any
	Cause error
}

var _ error = &Error{}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Status, e.Message)
	if len(e.Logs) > 0 {
		msg += " [" + strings.Join(e.Logs, "; ") + "]"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Errorf(status Status, format string, args ...interface{}) error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap tags an existing error with a status, keeping it reachable via errors.Is/As.
func Wrap(status Status, cause error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &Error{
		Status:  status,
		Message: msg,
		Cause:   cause,
	}
}

func InvalidAmountf(format string, args ...interface{}) error {
	return Errorf(InvalidAmount, format, args...)
}

func NoRoutef(format string, args ...interface{}) error {
	return Errorf(NoRoute, format, args...)
}

func UnsupportedRoutef(format string, args ...interface{}) error {
	return Errorf(UnsupportedRoute, format, args...)
}

func FeeUnavailablef(format string, args ...interface{}) error {
	return Errorf(FeeUnavailable, format, args...)
}

// Used when a bridge pre-flight check fails. The logs are surfaced verbatim.
func ValidationFailedf(logs []string, format string, args ...interface{}) error {
	return &Error{
		Status:  ValidationFailed,
		Message: fmt.Sprintf(format, args...),
		Logs:    logs,
	}
}

func SubmissionFailedf(format string, args ...interface{}) error {
	return Errorf(SubmissionFailed, format, args...)
}

func DispatchFailedf(format string, args ...interface{}) error {
	return Errorf(DispatchFailed, format, args...)
}

func ConfirmationTimeoutf(format string, args ...interface{}) error {
	return Errorf(ConfirmationTimeout, format, args...)
}

func SignatureDeclinedf(format string, args ...interface{}) error {
	return Errorf(SignatureDeclined, format, args...)
}

// StatusOf returns the status of the first tagged error in the chain, or UnknownError.
func StatusOf(err error) Status {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Status
	}
	return UnknownError
}

// Is reports whether any error in the chain carries the given status.
func Is(err error, status Status) bool {
	for err != nil {
		var tagged *Error
		if !errors.As(err, &tagged) {
			return false
		}
		if tagged.Status == status {
			return true
		}
		err = tagged.Cause
	}
	return false
}

// LogsOf returns the validation logs attached to the first tagged error.
func LogsOf(err error) []string {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Logs
	}
	return nil
}
