package xtream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of a panel error.
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the panel did not answer in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the panel refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the panel host could not be resolved
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-200 status
	ErrTypeHTTP
	// ErrTypeAuth indicates rejected or inactive credentials
	ErrTypeAuth
	// ErrTypeExpired indicates the subscription has run out
	ErrTypeExpired
	// ErrTypeParse indicates a response that is not the expected JSON
	ErrTypeParse
	// ErrTypeValidation indicates bad input before any request was made
	ErrTypeValidation
	// ErrTypeUnknown indicates an unexpected error
	ErrTypeUnknown
)

func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeExpired:
		return "Account Expired"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError is returned by every Client call that fails.
type APIError struct {
	Type       ErrorType
	Action     string // player_api action, empty for the account call
	Message    string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *APIError) Error() string {
	prefix := e.Type.String()
	if e.Action != "" {
		prefix = fmt.Sprintf("%s [%s]", prefix, e.Action)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a transport error to an APIError.
func ClassifyNetworkError(err error) *APIError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return &APIError{Type: ErrTypeNetwork, Message: "Request cancelled", Err: err}
	}

	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Type: ErrTypeTimeout, Message: "Request timed out", Err: err, Retryable: true}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &APIError{Type: ErrTypeConnectionRefused, Message: "Panel refused connection", Err: err, Retryable: true}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &APIError{Type: ErrTypeNetwork, Message: "Host unreachable", Err: err, Retryable: true}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &APIError{Type: ErrTypeNetwork, Message: "Network unreachable", Err: err, Retryable: true}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyNetworkError(urlErr.Err)
	}

	return &APIError{Type: ErrTypeNetwork, Message: "Network error occurred", Err: err, Retryable: true}
}

// NewNetworkError classifies err and replaces its message.
func NewNetworkError(message string, err error) *APIError {
	e := ClassifyNetworkError(err)
	if e == nil {
		return &APIError{Type: ErrTypeNetwork, Message: message, Retryable: true}
	}
	e.Message = message
	return e
}

// NewAuthError creates an authentication error.
func NewAuthError(message string) *APIError {
	return &APIError{Type: ErrTypeAuth, Message: message, StatusCode: http.StatusUnauthorized}
}

// NewExpiredError creates an expired-subscription error.
func NewExpiredError(message string) *APIError {
	return &APIError{Type: ErrTypeExpired, Message: message}
}

// NewHTTPError creates an HTTP error; 5xx are retryable.
func NewHTTPError(statusCode int, message string) *APIError {
	return &APIError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
	}
}

// NewParseError creates a parse error.
func NewParseError(message string, err error) *APIError {
	return &APIError{Type: ErrTypeParse, Message: message, Err: err}
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *APIError {
	return &APIError{Type: ErrTypeValidation, Message: message}
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsNetworkError reports network, timeout, refused and DNS errors.
func IsNetworkError(err error) bool {
	e, ok := asAPIError(err)
	if !ok {
		return false
	}
	switch e.Type {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	}
	return false
}

// IsAuthError reports rejected credentials and expired accounts.
func IsAuthError(err error) bool {
	e, ok := asAPIError(err)
	return ok && (e.Type == ErrTypeAuth || e.Type == ErrTypeExpired)
}

// IsExpired reports an expired subscription.
func IsExpired(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Type == ErrTypeExpired
}

// IsParseError reports a malformed response.
func IsParseError(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Type == ErrTypeParse
}

// IsRetryable reports whether the request may succeed if repeated.
func IsRetryable(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Retryable
}

// UserMessage is the alert text for err.
func UserMessage(err error) string {
	e, ok := asAPIError(err)
	if !ok {
		return "Błąd: " + err.Error()
	}

	switch e.Type {
	case ErrTypeTimeout:
		return "Serwer nie odpowiada"
	case ErrTypeConnectionRefused:
		return "Serwer odrzucił połączenie"
	case ErrTypeDNS:
		return "Nie można odnaleźć serwera"
	case ErrTypeNetwork:
		return "Błąd połączenia z serwerem"
	case ErrTypeAuth:
		return "Konto IPTV nieaktywne"
	case ErrTypeExpired:
		return "Konto IPTV wygasło"
	case ErrTypeHTTP:
		return fmt.Sprintf("Błąd serwera (HTTP %d)", e.StatusCode)
	case ErrTypeParse:
		return "Nieprawidłowa odpowiedź serwera"
	case ErrTypeValidation:
		return e.Message
	default:
		return "Błąd: " + e.Message
	}
}
