package ticktick

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed operation. The set is closed: every
// failure the client can surface maps onto exactly one kind.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindPermission     ErrorKind = "permission"
	KindNotFound       ErrorKind = "not_found"
	KindRateLimit      ErrorKind = "rate_limit"
	KindNetwork        ErrorKind = "network"
	KindTimeout        ErrorKind = "timeout"
	KindServer         ErrorKind = "server"
	KindValidation     ErrorKind = "validation"
	KindUnknown        ErrorKind = "unknown"
)

// Error is the typed failure value returned by the client and the
// workflows built on it. StatusCode is set for HTTP-level failures,
// RetryAfter only for rate limit responses that carried a Retry-After
// header.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	RetryAfter int // seconds, rate limit only
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ticktick: %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ticktick: %s: %s", e.Kind, e.Message)
}

// newError builds an Error for the given kind.
func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind from err. Errors that are not *Error
// values, including wrapped unexpected faults, classify as unknown.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// kindForStatus maps a terminal HTTP status code onto an error kind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == 401:
		return KindAuthentication
	case status == 403:
		return KindPermission
	case status == 404:
		return KindNotFound
	case status == 429:
		return KindRateLimit
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}
