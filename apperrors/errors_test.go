package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	err := NewConflict("duplicate pending renewal")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict kind to match")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("conflict must not match not-found")
	}
	if err.Error() != "duplicate pending renewal" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestKindMatchingThroughWrap(t *testing.T) {
	err := fmt.Errorf("decide renewal: %w", NewInvalidState("already decided"))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid-state kind to survive wrapping")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("no such application"), 404},
		{"validation", NewValidationFailed("student_name required"), 400},
		{"invalid state", NewInvalidState("application already decided"), 409},
		{"precondition", NewPreconditionFailed("oral test not passed"), 412},
		{"conflict", NewConflict("already converted"), 409},
		{"infrastructure", errors.New("dial tcp: connection refused"), 500},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestIsDomain(t *testing.T) {
	if !IsDomain(NewConflict("x")) {
		t.Fatalf("conflict should be a domain error")
	}
	if IsDomain(errors.New("db gone")) {
		t.Fatalf("infrastructure error must not be a domain error")
	}
}
