package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. Callers match kinds with errors.Is
// against the sentinel errors below.
type Kind string

const (
	KindInvalidArgument      Kind = "InvalidArgument"
	KindConfigurationMissing Kind = "ConfigurationMissing"
	KindAuthenticationFailed Kind = "AuthenticationFailed"
	KindTransportError       Kind = "TransportError"
	KindRemoteQueryError     Kind = "RemoteQueryError"
	KindInvalidFilter        Kind = "InvalidFilter"
	KindSpillFailed          Kind = "SpillFailed"
)

// Sentinel errors, one per Kind.
var (
	// ErrInvalidArgument covers malformed JSON query bodies, unknown environment
	// names and other caller mistakes detected before any network call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfigurationMissing indicates that credentials could not be resolved.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrAuthenticationFailed indicates that the verification call was rejected
	// or could not be completed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTransportError indicates a non-2xx HTTP status or a network failure.
	ErrTransportError = errors.New("transport error")

	// ErrRemoteQueryError indicates a logical failure reported by the backend
	// inside an otherwise successful HTTP response.
	ErrRemoteQueryError = errors.New("remote query error")

	// ErrInvalidFilter indicates that a filter expression failed to compile or
	// failed during evaluation.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrSpillFailed indicates that an oversized result could not be written
	// to its spill file.
	ErrSpillFailed = errors.New("spill failed")
)

var kindSentinels = map[Kind]error{
	KindInvalidArgument:      ErrInvalidArgument,
	KindConfigurationMissing: ErrConfigurationMissing,
	KindAuthenticationFailed: ErrAuthenticationFailed,
	KindTransportError:       ErrTransportError,
	KindRemoteQueryError:     ErrRemoteQueryError,
	KindInvalidFilter:        ErrInvalidFilter,
	KindSpillFailed:          ErrSpillFailed,
}

// Error is the single error type produced by the query pipeline.
//
// # Error Matching Semantics
//
// Is() matches the sentinel error of the error's Kind, so callers can write
// errors.Is(err, backend.ErrTransportError). Unwrap() returns the underlying
// cause, so errors.Is also reaches the root cause (for example a
// context.DeadlineExceeded from the HTTP client).
type Error struct {
	Kind  Kind
	Stage string

	// Message is the human readable description. For remote query errors it
	// is the message supplied by the server.
	Message string

	// Status is the HTTP status code for transport errors, or 0 when the
	// failure happened below HTTP.
	Status int

	// Body is the response body text for transport errors, when available.
	Body string

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	switch {
	case msg == "" && e.Err != nil:
		msg = e.Err.Error()
	case e.Err != nil:
		msg = msg + ": " + e.Err.Error()
	}
	if e.Kind == KindTransportError && e.Status != 0 {
		msg = fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
		if e.Message != "" {
			msg = e.Message + ": " + msg
		}
	}
	if e.Stage == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Stage, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's Kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// NewError creates an Error of the given kind for a pipeline stage.
func NewError(kind Kind, stage string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// Errorf creates an Error of the given kind with a formatted message.
func Errorf(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or "" when err is not a pipeline error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
