package apns

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Kind tags every failure this package reports.
type Kind int

// Kinds of failures
const (
	KindUnknown    Kind = iota
	KindValidation      // caller input rejected at the mutating call
	KindCredential      // signing key unreadable or signing failed
	KindTransport       // connection, TLS or DNS failure; nothing reached APNs
	KindRejected        // APNs processed the request and declined it
	KindGone            // the device token is no longer valid
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCredential:
		return "credential"
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindGone:
		return "gone"
	}
	return "unknown"
}

// ErrClientClosed is returned by Send after Close.
var ErrClientClosed = errors.New("apns: client is closed")

// KindOf returns the kind of err, looking through wrapped errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var (
		ve *ValidationError
		ce *CredentialError
		te *TransportError
		re *RejectedError
		ge *GoneError
	)
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ce):
		return KindCredential
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &re):
		return KindRejected
	case errors.As(err, &ge):
		return KindGone
	}
	return KindUnknown
}

// ValidationError reports an invalid value passed to a setter or constructor.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("apns: invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CredentialError is fatal for the client until the configuration is fixed.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return "apns: credential: " + e.Err.Error()
}

func (e *CredentialError) Unwrap() error { return e.Err }

// TransportError wraps a failure below HTTP. It is safe to retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "apns: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError is a declined request with the reason decoded from the response body.
type RejectedError struct {
	StatusCode int
	Reason     string
}

func (e *RejectedError) Error() string {
	if code, ok := LookupErrorResponseCode(e.Reason); ok {
		return fmt.Sprintf("apns: rejected status:%d reason:%s (%s)", e.StatusCode, e.Reason, code.Description())
	}
	return fmt.Sprintf("apns: rejected status:%d reason:%s", e.StatusCode, e.Reason)
}

// Retryable reports whether the status suggests sending again later.
// 400, 403, 404, 405 and 413 mean the request itself is defective.
func (e *RejectedError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// GoneError signals the device token must not be targeted until it registers again.
type GoneError struct {
	Token     string
	Reason    string
	Timestamp int64 // milliseconds
}

func (e *GoneError) Error() string {
	return fmt.Sprintf("apns: device token %s is no longer active: %s", e.Token, e.Reason)
}

// Time returns the last time APNs confirmed the token was no longer valid.
func (e *GoneError) Time() time.Time {
	if e.Timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(0, e.Timestamp*int64(time.Millisecond))
}
