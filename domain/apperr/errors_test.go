package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"conflict", Conflict("email", "exists"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"rate limited", RateLimited("slow down"), http.StatusTooManyRequests},
		{"not implemented", NotImplemented("later"), http.StatusNotImplemented},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
		{"unknown kind", &Error{Kind: "mystery"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := Validation("Validation Error", "Title is required", "Invalid priority")
	want := "validation: Validation Error (Title is required; Invalid priority)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := NotFound("Task not found")
	if got := plain.Error(); got != "not_found: Task not found" {
		t.Errorf("Error() = %q, want %q", got, "not_found: Task not found")
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should return nil")
	}

	original := Forbidden("Not authorized to access this task")
	wrapped := fmt.Errorf("get-task: %w", original)
	if got := From(wrapped); got != original {
		t.Errorf("From() = %v, want the wrapped *Error", got)
	}

	got := From(errors.New("disk full"))
	if got.Kind != KindInternal {
		t.Errorf("From(plain).Kind = %v, want %v", got.Kind, KindInternal)
	}
	if got.Message != "disk full" {
		t.Errorf("From(plain).Message = %q, want %q", got.Message, "disk full")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict("email", "User already exists with this email"))

	if !Is(err, KindConflict) {
		t.Error("Is(err, KindConflict) = false, want true")
	}
	if Is(err, KindValidation) {
		t.Error("Is(err, KindValidation) = true, want false")
	}
	if Is(errors.New("plain"), KindInternal) {
		t.Error("Is(plain, KindInternal) = true, want false")
	}
}
