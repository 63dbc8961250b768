package telemetry

import "fmt"

// Kind classifies an error by the layer that raised it, so callers can
// branch with errors.Is/As instead of string-matching formatted messages.
type Kind int

const (
	KindTransport Kind = iota
	KindStatus
	KindSchema
	KindMissingModel
	KindSimulator
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindSchema:
		return "schema"
	case KindMissingModel:
		return "missing_model"
	case KindSimulator:
		return "simulator"
	default:
		return "unknown"
	}
}

// Error is the common error shape across the core: a Kind, a message, and
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, &telemetry.Error{Kind: telemetry.KindTransport}) matches
// any Transport error regardless of message or cause.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Transport builds a Transport-kind error (socket or HTTP failure).
func Transport(cause error, format string, args ...interface{}) *Error {
	return wrapErr(KindTransport, cause, format, args...)
}

// StatusError is the error for a non-2xx HTTP response, carrying its code
// and body. It is its own type rather than an *Error, so callers match it
// with errors.As against a *StatusError target rather than by Kind.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status: non-2xx response %d: %s", e.Code, e.Body)
}

// Status builds a StatusError for a non-2xx HTTP code and body.
func Status(code int, body string) *StatusError {
	return &StatusError{Code: code, Body: body}
}

// Schema builds a Schema-kind error: a document whose cell discriminator
// was unrecognized in a context that demands a known cell.
func Schema(format string, args ...interface{}) *Error {
	return newErr(KindSchema, format, args...)
}

// MissingModel builds a Missing-model-kind error naming the offending
// schematic identifier.
func MissingModel(id string) *Error {
	return newErr(KindMissingModel, "no models document for %q", id)
}

// Simulator builds a Simulator-error-kind error from an RPC read-loop
// failure.
func Simulator(cause error, format string, args ...interface{}) *Error {
	return wrapErr(KindSimulator, cause, format, args...)
}
