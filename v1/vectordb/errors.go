package vectordb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
)

// Kind classifies a failed operation.
type Kind int

const (
	// KindNone means the operation succeeded.
	KindNone Kind = iota
	// KindInvalidArgument is a malformed request detected locally, before any network call.
	KindInvalidArgument
	// KindTransport is a server-reported failure: a non-2xx HTTP status or a gRPC error status.
	KindTransport
	// KindDecode is a response that does not match the expected wire grammar.
	KindDecode
	// KindCanceled is a call aborted by the caller's context.
	KindCanceled
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindTransport:
		return "transport_failure"
	case KindDecode:
		return "decode_failure"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinel errors for use with errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrInvalidArgument = errors.New("vectordb: invalid argument")
	ErrTransport       = errors.New("vectordb: transport failure")
	ErrDecode          = errors.New("vectordb: decode failure")
	ErrCanceled        = errors.New("vectordb: canceled")

	// ErrClosed is returned by every call made after Close.
	ErrClosed = errors.New("vectordb: transport is closed")
)

// Error is the error type returned by transports.
type Error struct {
	// Op is the operation name, e.g. "query" or "delete_all"
	Op string
	// Kind classifies the failure
	Kind Kind
	// Code is the protocol status: the HTTP status code or the gRPC code name
	Code string
	// Message is the server-provided body text or a local description
	Message string
	// Err is the underlying cause, if any
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("vectordb: %s: %s", e.Op, e.Kind)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel error of the error's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrCanceled:
		return e.Kind == KindCanceled
	}
	return false
}

// NewInvalidArgument returns a KindInvalidArgument error for op.
func NewInvalidArgument(op, format string, args ...any) *Error {
	return &Error{Op: op, Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NewTransportFailure returns a KindTransport error carrying the protocol
// status code and the raw server message.
func NewTransportFailure(op, code, message string, cause error) *Error {
	return &Error{Op: op, Kind: KindTransport, Code: code, Message: message, Err: cause}
}

// NewEncodeFailure returns a KindInvalidArgument error for request data that
// cannot be put on the wire, such as a non-finite metadata number.
func NewEncodeFailure(op string, cause error) *Error {
	return &Error{Op: op, Kind: KindInvalidArgument, Message: cause.Error(), Err: cause}
}

// NewDecodeFailure returns a KindDecode error wrapping cause.
func NewDecodeFailure(op string, cause error) *Error {
	return &Error{Op: op, Kind: KindDecode, Err: cause}
}

// NewCanceled returns a KindCanceled error. The result matches both ErrCanceled
// and the context error (context.Canceled or context.DeadlineExceeded).
func NewCanceled(op string, ctxErr, cause error) *Error {
	err := ctxErr
	if cause != nil && !errors.Is(cause, ctxErr) {
		err = errors.Join(ctxErr, cause)
	} else if cause != nil {
		err = cause
	}
	return &Error{Op: op, Kind: KindCanceled, Err: err}
}

// NewClosed returns the error reported by calls made after Close.
func NewClosed(op string) *Error {
	return &Error{Op: op, Kind: KindTransport, Message: "transport is closed", Err: ErrClosed}
}

// FromContext returns a KindCanceled error when ctx is done, so that a network
// error caused by cancellation is not reported as a server failure.
func FromContext(ctx context.Context, op string, cause error) (*Error, bool) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return NewCanceled(op, ctxErr, cause), true
	}
	return nil, false
}

// KindOf classifies any error returned by this module.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case metadata.IsUnsupported(err):
		return KindInvalidArgument
	case metadata.IsDecodeError(err):
		return KindDecode
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindTransport
	}
}

// IsInvalidArgument reports whether err is a locally detected malformed request,
// including metadata that could not be converted.
func IsInvalidArgument(err error) bool {
	return KindOf(err) == KindInvalidArgument
}

// IsTransportFailure reports whether the server rejected the request.
func IsTransportFailure(err error) bool {
	return err != nil && KindOf(err) == KindTransport
}

// IsDecodeFailure reports whether a response could not be decoded.
func IsDecodeFailure(err error) bool {
	return KindOf(err) == KindDecode
}

// IsCanceled reports whether the call was aborted by its context.
func IsCanceled(err error) bool {
	return KindOf(err) == KindCanceled
}

// IsClosed reports whether the call was made on a closed transport.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
