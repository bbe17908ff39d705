package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeFailedPrecondition, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeResourceExhausted, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(E(tc.code, "Op", "msg", nil)); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}

	if got := HTTPStatus(ErrNotFound); got != http.StatusNotFound {
		t.Errorf("HTTPStatus(ErrNotFound) = %d, want 404", got)
	}
	if got := HTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus(plain error) = %d, want 500", got)
	}
}

func TestIsCodeUnwraps(t *testing.T) {
	inner := E(CodeConflict, "Repo.Create", "duplicate", ErrConflict)
	wrapped := fmt.Errorf("outer: %w", inner)

	if !IsCode(wrapped, CodeConflict) {
		t.Error("IsCode must see through wrapping")
	}
	if IsCode(wrapped, CodeNotFound) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(ErrConflict, CodeConflict) {
		t.Error("sentinel without AppError must not match")
	}
	if !errors.Is(wrapped, ErrConflict) {
		t.Error("AppError must unwrap to its cause")
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := E(CodeNotFound, "SessionService.Get", "session not found", ErrNotFound)
	want := "SessionService.Get: session not found: not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
