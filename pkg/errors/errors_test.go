package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	plain := New(ErrCodeInvalidStep, "unknown step kind: %s", "warp")
	if got := plain.Error(); got != "INVALID_STEP: unknown step kind: warp" {
		t.Errorf("Error() = %q", got)
	}

	cause := stderrors.New("connection refused")
	wrapped := Wrap(ErrCodeNetwork, cause, "failed to fetch %s", "http://example")
	if got := wrapped.Error(); got != "NETWORK_ERROR: failed to fetch http://example: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("wrapped error lost its cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(ErrCodeInvalidPipeline, "bad config")

	if !Is(err, ErrCodeInvalidPipeline) {
		t.Error("Is should match the code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is matched the wrong code")
	}
	if Is(stderrors.New("plain"), ErrCodeInternal) {
		t.Error("Is matched a non-structured error")
	}

	if got := GetCode(err); got != ErrCodeInvalidPipeline {
		t.Errorf("GetCode = %q", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}

	// The code survives further wrapping with %w.
	deep := Wrap(ErrCodeInternal, err, "while building pipeline")
	var e *Error
	if !stderrors.As(deep, &e) {
		t.Fatal("As failed")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "no inputs given")); got != "no inputs given" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("raw")); got != "raw" {
		t.Errorf("UserMessage = %q", got)
	}
}
