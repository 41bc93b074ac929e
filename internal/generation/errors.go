package generation

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies why a generation failed.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	NetworkError
	ServiceError
	MalformedResponse
	MissingCredential
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkError:
		return "network_error"
	case ServiceError:
		return "service_error"
	case MalformedResponse:
		return "malformed_response"
	case MissingCredential:
		return "missing_credential"
	default:
		return ""
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Describe is the human-readable label used as message prefix.
func (k ErrorKind) Describe() string {
	switch k {
	case NetworkError:
		return "network error"
	case ServiceError:
		return "service error"
	case MalformedResponse:
		return "malformed response"
	case MissingCredential:
		return "missing credential"
	default:
		return "error"
	}
}

// ErrMissingCredential is wrapped by errors for requests without an API key.
var ErrMissingCredential = errors.New("no API key configured")

// Error is a classified generation failure. Message never contains the
// credential.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Describe()
	}
	return e.Kind.Describe() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func missingCredential() *Error {
	return &Error{
		Kind:    MissingCredential,
		Message: "set an API key in the config file or environment",
		Err:     ErrMissingCredential,
	}
}

// classify maps any error to a *Error. Unclassified errors are transport
// failures.
func classify(err error) *Error {
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(NetworkError, err, "request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return newError(NetworkError, err, "request canceled")
	}
	return newError(NetworkError, err, "%v", err)
}
