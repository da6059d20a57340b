package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		local     bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", local: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required", local: true},
		{code: CodeTokenInvalid, status: http.StatusUnauthorized, publicMsg: "session expired"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeRemote, status: http.StatusBadGateway, publicMsg: "request failed"},
		{code: CodeNetwork, status: http.StatusServiceUnavailable, publicMsg: "network unavailable", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal error", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.Local != tt.local {
			t.Fatalf("code %s expected local %v got %v", tt.code, tt.local, meta.Local)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeNetwork, cause, "ctx").WithStatus(0)
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeNetwork {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeRemote, "nope").WithStatus(http.StatusTeapot))
	if got := As(err); got == nil || got.Code() != CodeRemote {
		t.Fatalf("As failed to return typed error")
	}
	if StatusOf(err) != http.StatusTeapot {
		t.Fatalf("expected status to survive wrapping, got %d", StatusOf(err))
	}
	if !Is(err, CodeRemote) || Is(err, CodeNetwork) {
		t.Fatalf("Is matched the wrong code")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if StatusOf(nil) != 0 {
		t.Fatalf("StatusOf(nil) should be zero")
	}
}

func TestUserMessagePrefersServerMessage(t *testing.T) {
	remote := New(CodeRemote, "Only 2 left in stock")
	if got := UserMessage(remote, "Failed to add item to cart"); got != "Only 2 left in stock" {
		t.Fatalf("expected server message, got %q", got)
	}
	blank := New(CodeRemote, "  ")
	if got := UserMessage(blank, "Failed to add item to cart"); got != "Failed to add item to cart" {
		t.Fatalf("expected fallback for blank message, got %q", got)
	}
	network := Wrap(CodeNetwork, stdErrors.New("dial tcp"), "dial tcp: refused")
	if got := UserMessage(network, "Failed to add item to cart"); got != "Failed to add item to cart" {
		t.Fatalf("network errors should use fallback, got %q", got)
	}
	if got := UserMessage(stdErrors.New("plain"), "fallback"); got != "fallback" {
		t.Fatalf("untyped errors should use fallback, got %q", got)
	}
}

func TestDumpWalksChain(t *testing.T) {
	cause := stdErrors.New("root")
	err := fmt.Errorf("outer: %w", Wrap(CodeRemote, cause, "mid").WithStatus(http.StatusBadRequest))
	d := Dump(err)
	if d.Code != CodeRemote || d.Status != http.StatusBadRequest {
		t.Fatalf("unexpected dump %+v", d)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d", len(d.Chain))
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("nil dump should be empty")
	}
	if d.Fields()["error_code"] != CodeRemote {
		t.Fatalf("fields should carry code")
	}
}
