package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("client-a") {
			t.Fatalf("request %d: denied, want allowed", i)
		}
	}
	if l.Allow("client-a") {
		t.Error("request 3: allowed, want denied")
	}
	// A different client has its own bucket.
	if !l.Allow("client-b") {
		t.Error("client-b denied, want allowed")
	}
}

func TestLimiterRefill(t *testing.T) {
	// 60 per second refills one token in ~17ms.
	l := NewLimiter(60, time.Second)
	for i := 0; i < 60; i++ {
		l.Allow("client")
	}
	if l.Allow("client") {
		t.Fatal("bucket should be empty")
	}
	time.Sleep(50 * time.Millisecond)
	if !l.Allow("client") {
		t.Error("bucket did not refill")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	h := RateLimit(l)(okHandler())

	req := httptest.NewRequest("GET", "/api/search?q=x", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	// A forwarded client is keyed separately.
	req2 := httptest.NewRequest("GET", "/api/search?q=x", nil)
	req2.RemoteAddr = "10.0.0.1:1234"
	req2.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req2)
	if rec.Code != http.StatusOK {
		t.Errorf("forwarded client status = %d, want 200", rec.Code)
	}
}

// TestRateLimitForwardedChain verifies the limiter keys on the first
// X-Forwarded-For entry, so the same client shares one bucket no matter
// which proxy chain the request arrived through.
func TestRateLimitForwardedChain(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	h := RateLimit(l)(okHandler())

	send := func(forwarded string) int {
		req := httptest.NewRequest("GET", "/api/search?q=x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("203.0.113.7, 10.0.0.1"); got != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", got)
	}
	// Same client through a different proxy chain hits the same bucket.
	if got := send("203.0.113.7, 172.16.0.1, 10.0.0.1"); got != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", got)
	}
	// A different client behind the same proxies is keyed separately.
	if got := send("198.51.100.9, 10.0.0.1"); got != http.StatusOK {
		t.Errorf("other client status = %d, want 200", got)
	}
}

func TestAdminKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		header map[string]string
		status int
	}{
		{"no key configured", "", nil, http.StatusForbidden},
		{"missing key", "secret", nil, http.StatusUnauthorized},
		{"wrong key", "secret", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"x-api-key header", "secret", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer token", "secret", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
		{"wrong bearer", "secret", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AdminKey(tt.key)(okHandler())
			req := httptest.NewRequest("GET", "/api/debug/index", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS(DefaultCORSConfig([]string{"http://example.test"}))(okHandler())

	// Allowed origin gets the headers.
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Origin", "http://example.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://example.test" {
		t.Errorf("Allow-Origin = %q", got)
	}

	// Unknown origin gets none.
	req = httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for unknown origin = %q, want empty", got)
	}

	// Preflight short-circuits with 204.
	req = httptest.NewRequest("OPTIONS", "/api/tasks", nil)
	req.Header.Set("Origin", "http://example.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestCORSWildcardDefault(t *testing.T) {
	h := CORS(DefaultCORSConfig(nil))(okHandler())

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Origin", "http://anything.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://anything.test" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Overshoots the timeout without writing anything.
		time.Sleep(200 * time.Millisecond)
	})
	h := Timeout(20 * time.Millisecond)(slow)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/tasks", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
}

func TestTimeoutPassesFastRequests(t *testing.T) {
	h := Timeout(time.Second)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/tasks", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get("X-Request-ID")
	})
	h := RequestID(inner)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if seen == "" {
		t.Error("no request ID generated")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "given-id" {
		t.Errorf("X-Request-ID = %q, want given-id", got)
	}
}
