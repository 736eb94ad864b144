package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"task not found", ErrTaskNotFound, http.StatusNotFound},
		{"npc not found", ErrNPCNotFound, http.StatusNotFound},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"store unloaded", ErrStoreUnloaded, http.StatusServiceUnavailable},
		{"unknown error", stderrors.New("surprise"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("loading: %w", ErrTaskNotFound), http.StatusNotFound},
		{"app error status wins", New(ErrInternal, http.StatusBadGateway, "upstream"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %d out of range", -1)
	if !stderrors.Is(err, ErrInvalidInput) {
		t.Error("AppError does not unwrap to its sentinel")
	}
	if err.Error() != "invalid input: limit -1 out of range" {
		t.Errorf("Error() = %q", err.Error())
	}
}
