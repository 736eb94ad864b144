// Package middleware provides reusable HTTP middleware: request IDs, CORS,
// Prometheus metrics, request timeouts, per-client rate limiting, and the
// admin-key guard for debug endpoints.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/cityu-campus/tasks-api/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request a unique ID, honouring one supplied by the
// client, and stores it in the request context and response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logger.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRequestID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(buf[:])
}
