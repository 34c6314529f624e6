package daverr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindTransport
	KindAuth
	KindNotFound
	KindProtocol
	KindLocalIO
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config_error"
	case KindTransport:
		return "transport_error"
	case KindAuth:
		return "auth_failure"
	case KindNotFound:
		return "not_found"
	case KindProtocol:
		return "protocol_error"
	case KindLocalIO:
		return "local_io_error"
	}
	return "unknown"
}

// TransportKind refines KindTransport.
type TransportKind int

const (
	TransportNone TransportKind = iota
	TransportTimeout
	TransportConnect
	TransportTLS
	TransportIO
)

func (t TransportKind) String() string {
	switch t {
	case TransportTimeout:
		return "timeout"
	case TransportConnect:
		return "connect"
	case TransportTLS:
		return "tls"
	case TransportIO:
		return "io"
	}
	return "none"
}

// Error is the single failure value returned by every davsync operation.
// Detail must never carry a credential.
type Error struct {
	Kind      Kind
	Transport TransportKind
	Code      int // http status, 0 when no response was received
	Detail    string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Kind == KindTransport && e.Transport != TransportNone {
		msg += "(" + e.Transport.String() + ")"
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(", code:%d", e.Code)
	}
	if len(e.Detail) > 0 {
		msg += ", " + e.Detail
	}
	if e.Err != nil {
		msg += ", err:" + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same request unchanged.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

func Config(format string, args ...interface{}) *Error {
	return New(KindConfig, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func LocalIO(err error, format string, args ...interface{}) *Error {
	return Wrap(KindLocalIO, err, format, args...)
}

func Transport(tk TransportKind, err error, format string, args ...interface{}) *Error {
	e := Wrap(KindTransport, err, format, args...)
	e.Transport = tk
	return e
}

func Protocol(code int, format string, args ...interface{}) *Error {
	e := New(KindProtocol, format, args...)
	e.Code = code
	return e
}

// KindOf returns the kind of the first *Error found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func TransportKindOf(err error) TransportKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Transport
	}
	return TransportNone
}

func StatusCodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
