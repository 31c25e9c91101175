package xtream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{"timeout", os.ErrDeadlineExceeded, ErrTypeTimeout, true},
		{"deadline", context.DeadlineExceeded, ErrTypeTimeout, true},
		{"cancelled", context.Canceled, ErrTypeNetwork, false},
		{"dns", &net.DNSError{Name: "panel.invalid", Err: "no such host"}, ErrTypeDNS, false},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ErrTypeConnectionRefused, true},
		{"unreachable", &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, ErrTypeNetwork, true},
		{"other", errors.New("boom"), ErrTypeNetwork, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError(tt.err)
			if got.Type != tt.wantType || got.Retryable != tt.retryable {
				t.Errorf("ClassifyNetworkError() = %v retryable=%v, want %v retryable=%v", got.Type, got.Retryable, tt.wantType, tt.retryable)
			}
		})
	}

	if ClassifyNetworkError(nil) != nil {
		t.Error("ClassifyNetworkError(nil) != nil")
	}
}

func TestPredicatesSeeWrappedErrors(t *testing.T) {
	err := fmt.Errorf("loading home: %w", NewExpiredError("x"))
	if !IsAuthError(err) || !IsExpired(err) {
		t.Error("wrapped expired error not recognised")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error should not be retryable")
	}
	if !IsRetryable(NewHTTPError(503, "x")) || IsRetryable(NewHTTPError(404, "x")) {
		t.Error("HTTP retryability wrong")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewAuthError("x"), "Konto IPTV nieaktywne"},
		{NewExpiredError("x"), "Konto IPTV wygasło"},
		{NewHTTPError(502, "x"), "Błąd serwera (HTTP 502)"},
		{NewValidationError("Wypełnij wszystkie pola"), "Wypełnij wszystkie pola"},
		{errors.New("boom"), "Błąd: boom"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestErrorString(t *testing.T) {
	e := withAction(NewParseError("bad json", errors.New("eof")), "get_series")
	if s := e.Error(); !strings.Contains(s, "[get_series]") || !strings.Contains(s, "eof") {
		t.Errorf("Error() = %q", s)
	}
}
