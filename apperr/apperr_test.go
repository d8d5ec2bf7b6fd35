package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(NotFound, "Course not found")
	if KindOf(err) != NotFound {
		t.Errorf("Expected NotFound, got %v", KindOf(err))
	}

	// Wrapped further up the chain
	wrapped := fmt.Errorf("handler: %w", err)
	if KindOf(wrapped) != NotFound {
		t.Errorf("Expected NotFound through wrapping, got %v", KindOf(wrapped))
	}

	// Plain errors classify as Unexpected
	if KindOf(errors.New("boom")) != Unexpected {
		t.Errorf("Expected Unexpected for plain error")
	}
}

func TestMessageOf(t *testing.T) {
	err := New(Conflict, "Already enrolled")
	if MessageOf(err) != "Already enrolled" {
		t.Errorf("Expected message to pass through, got %q", MessageOf(err))
	}

	// Unexpected errors must not leak internals
	internal := Wrap(Unexpected, "pq: connection refused", errors.New("dial tcp"))
	if MessageOf(internal) != "Internal server error" {
		t.Errorf("Unexpected error leaked message: %q", MessageOf(internal))
	}
	if MessageOf(errors.New("raw")) != "Internal server error" {
		t.Errorf("Plain error leaked message")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(Conflict, "Already submitted", cause)

	if !errors.Is(err, cause) {
		t.Errorf("Expected errors.Is to find the cause")
	}
	if !Is(err, Conflict) {
		t.Errorf("Expected Is to match Conflict")
	}
	if Is(err, NotFound) {
		t.Errorf("Is matched the wrong kind")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Unauthenticated: "unauthenticated",
		Forbidden:       "forbidden",
		InvalidArgument: "invalid_argument",
		NotFound:        "not_found",
		Conflict:        "conflict",
		StorageFailure:  "storage_failure",
		Unexpected:      "unexpected",
	}
	for kind, want := range cases {
		if kind.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, kind.String(), want)
		}
	}
}
