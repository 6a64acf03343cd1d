package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary mapping. Services return typed
// errors; handlers translate them into HTTP status + business code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindGateway
	KindExpiredLink
	KindBadSignature
)

// invalidLinkMessage is shared by expired and tampered download links so
// the response never reveals which check failed.
const invalidLinkMessage = "invalid or expired download link"

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Gatewayf wraps an upstream payment-provider failure. The provider
// status is embedded in the message; credentials never are.
func Gatewayf(provider string, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindGateway,
		Message: provider + ": " + fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ExpiredLink and BadSignature carry an identical message on purpose.
func ExpiredLink() *Error {
	return &Error{Kind: KindExpiredLink, Message: invalidLinkMessage}
}

func BadSignature() *Error {
	return &Error{Kind: KindBadSignature, Message: invalidLinkMessage}
}

// KindOf extracts the Kind from an error chain, KindInternal if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
