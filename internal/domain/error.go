package domain

import (
	"errors"
	"fmt"
)

var (
	// Gateway error taxonomy
	ErrValidation           = errors.New("invalid argument")
	ErrNetwork              = errors.New("gateway unreachable")
	ErrRemote               = errors.New("gateway rejected request")
	ErrUnrecognizedOperator = errors.New("no mobile money operator matches phone number")
	ErrMissingAPIKey        = errors.New("api key is required")
)

// ValidationError is raised before any network call when local input is malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// OperatorError reports a phone number that matched no entry of the operator table.
type OperatorError struct {
	Number string
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnrecognizedOperator, e.Number)
}

func (e *OperatorError) Unwrap() error { return ErrUnrecognizedOperator }

// NetworkError wraps transport failures (DNS, connect, timeout, unreadable body).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNetwork, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// RemoteError carries a non-2xx response or a body whose status is not "success".
// Message is the remote message verbatim when one was present.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (http %d): %s", ErrRemote, e.StatusCode, e.Message)
}

func (e *RemoteError) Unwrap() error { return ErrRemote }
