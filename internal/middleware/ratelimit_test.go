package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		remoteAddr string
		want       string
	}{
		{
			name:       "single ip",
			header:     "203.0.113.1",
			remoteAddr: "198.51.100.10:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "multiple ips use first",
			header:     " 203.0.113.1 , 198.51.100.2 ",
			remoteAddr: "198.51.100.10:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "invalid forwarded falls back",
			header:     "invalid",
			remoteAddr: "198.51.100.10:1234",
			want:       "198.51.100.10",
		},
		{
			name:       "empty forwarded uses remote host",
			header:     "",
			remoteAddr: "198.51.100.10:1234",
			want:       "198.51.100.10",
		},
		{
			name:       "ipv6 forwarded",
			header:     "2001:db8::1",
			remoteAddr: net.JoinHostPort("2001:db8::2", "443"),
			want:       "2001:db8::1",
		},
		{
			name:       "ipv6 remote fallback",
			header:     "invalid",
			remoteAddr: net.JoinHostPort("2001:db8::2", "443"),
			want:       "2001:db8::2",
		},
		{
			name:       "remote without port",
			header:     "invalid",
			remoteAddr: "203.0.113.1",
			want:       "203.0.113.1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.header != "" {
				req.Header.Set("X-Forwarded-For", tc.header)
			}
			if got := ClientIP(req); got != tc.want {
				t.Fatalf("ClientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	calls := 0
	limited := 0
	h := RateLimit(2, time.Minute, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limited++
		w.WriteHeader(http.StatusTooManyRequests)
	}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		req.RemoteAddr = "203.0.113.9:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if i == 2 {
			if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
				t.Fatalf("third request: code=%d retry=%q", rec.Code, rec.Header().Get("Retry-After"))
			}
		}
	}
	if calls != 2 || limited != 1 {
		t.Fatalf("calls=%d limited=%d", calls, limited)
	}

	other := httptest.NewRequest(http.MethodPost, "/auth", nil)
	other.RemoteAddr = "198.51.100.1:5000"
	h.ServeHTTP(httptest.NewRecorder(), other)
	if calls != 3 {
		t.Fatal("limits must be per client")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	calls := 0
	h := RateLimit(0, time.Minute, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	for i := 0; i < 5; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if calls != 5 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestWindowLimiterResets(t *testing.T) {
	l := newWindowLimiter(1, time.Minute)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if ok, _ := l.allow("a", start); !ok {
		t.Fatal("first request should pass")
	}
	ok, wait := l.allow("a", start.Add(20*time.Second))
	if ok || wait != 40*time.Second {
		t.Fatalf("second request: ok=%v wait=%s", ok, wait)
	}
	if ok, _ := l.allow("a", start.Add(time.Minute)); !ok {
		t.Fatal("request after the window should pass")
	}
}

func TestWindowLimiterSweepsStaleClients(t *testing.T) {
	l := newWindowLimiter(1, time.Second)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < maxTrackedClients; i++ {
		l.allow(strconv.Itoa(i), start)
	}
	l.allow("fresh", start.Add(2*time.Second))
	if len(l.windows) != 1 {
		t.Fatalf("expected stale windows to be swept, have %d", len(l.windows))
	}
}
