package cli

import (
	"errors"
	"fmt"
	"testing"
)

type codedError struct {
	code int
}

func (e codedError) Error() string { return "coded" }
func (e codedError) ExitCode() int { return e.code }

func TestExitError_DefaultsToCode1(t *testing.T) {
	err := &ExitError{Message: "failed"}
	if got := err.ExitCode(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestExitError_ExplicitCodeWins(t *testing.T) {
	err := &ExitError{Message: "failed", Code: 3}
	if got := err.ExitCode(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestExitCodeFor_PlainErrorIs1(t *testing.T) {
	if got := exitCodeFor(errors.New("boom")); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestExitCodeFor_UnwrapsExitCodeCarriers(t *testing.T) {
	if got := exitCodeFor(codedError{code: 5}); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	wrapped := fmt.Errorf("outer: %w", &ExitError{Message: "inner", Code: 9})
	if got := exitCodeFor(wrapped); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}
