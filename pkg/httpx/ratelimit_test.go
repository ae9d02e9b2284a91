package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/bankgate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func fire(h http.Handler, remote, target string, ctx context.Context) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "remote addr", want: "192.168.1.1"},
		{name: "x-forwarded-for first hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, want: "203.0.113.1"},
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "203.0.113.2"}, want: "203.0.113.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestCompositeKeyExtractorSkipsEmpty(t *testing.T) {
	ex := httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, httpx.FormFieldKeyExtractor("username"))

	req := httptest.NewRequest(http.MethodGet, "/?username=alice", nil)
	req.RemoteAddr = "192.168.1.1:1"
	require.Equal(t, "192.168.1.1:alice", ex(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:1"
	require.Equal(t, "192.168.1.1", ex(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}

	t.Run("blocks once burst is spent", func(t *testing.T) {
		h := httpx.RateLimitByIP(cfg)(okHandler)
		for i := range 3 {
			require.Equal(t, http.StatusOK, fire(h, "10.0.0.1:1", "/", t.Context()).Code, "request %d", i+1)
		}

		rec := fire(h, "10.0.0.1:1", "/", t.Context())
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("keys are independent", func(t *testing.T) {
		h := httpx.RateLimitByIP(cfg)(okHandler)
		for range 3 {
			fire(h, "10.0.0.1:1", "/", t.Context())
		}
		require.Equal(t, http.StatusTooManyRequests, fire(h, "10.0.0.1:1", "/", t.Context()).Code)
		require.Equal(t, http.StatusOK, fire(h, "10.0.0.2:1", "/", t.Context()).Code)
	})

	t.Run("empty key passes through", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" })(okHandler)
		for range 5 {
			require.Equal(t, http.StatusOK, fire(h, "10.0.0.1:1", "/", t.Context()).Code)
		}
	})

	t.Run("session buckets ignore address", func(t *testing.T) {
		h := httpx.RateLimitBySession(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})(okHandler)
		ctx := context.WithValue(t.Context(), httpx.CtxKeySessionID, "S1")

		require.Equal(t, http.StatusOK, fire(h, "10.0.0.1:1", "/", ctx).Code)
		require.Equal(t, http.StatusTooManyRequests, fire(h, "10.0.0.9:1", "/", ctx).Code)
	})

	t.Run("login limited per username", func(t *testing.T) {
		h := httpx.RateLimitByIPAndFormField(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, "username")(okHandler)

		require.Equal(t, http.StatusOK, fire(h, "10.0.0.1:1", "/?username=alice", t.Context()).Code)
		require.Equal(t, http.StatusTooManyRequests, fire(h, "10.0.0.1:1", "/?username=alice", t.Context()).Code)
		require.Equal(t, http.StatusOK, fire(h, "10.0.0.1:1", "/?username=bob", t.Context()).Code)
	})
}

func TestParseRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "42")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "7")
	t.Setenv("RATELIMIT_TEST_BURST", "-1")

	got := httpx.ParseRateLimitFromEnv("TEST", httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 9})
	require.Equal(t, 42, got.RequestsPerWindow)
	require.Equal(t, 7*time.Second, got.Window)
	require.Equal(t, 9, got.Burst)
}

func TestRateLimitProfilesOrdered(t *testing.T) {
	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
	require.Less(t, httpx.LenientLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
}
