package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaykit/relay/pkg/limiter"
)

func TestHTTPHandler(t *testing.T) {
	t.Parallel()

	newServer := func(t *testing.T, opts ...HTTPOption) (*Dispatcher, http.Handler) {
		t.Helper()
		d := New()
		d.MustRegister(
			NewRoute("/users/:id", func(_ context.Context, p map[string]any) (any, error) {
				return map[string]any{"payload": p}, nil
			}),
			NewRoute("/empty", func(context.Context, map[string]any) (any, error) {
				return nil, nil
			}),
			NewRoute("/teapot", func(context.Context, map[string]any) (any, error) {
				return nil, NewRequestError(http.StatusTeapot, "short and stout", WithMeta(map[string]any{"handle": true}))
			}),
			NewRoute("/boom", func(context.Context, map[string]any) (any, error) {
				return nil, context.DeadlineExceeded
			}),
		)
		return d, NewHTTPHandler(d, opts...)
	}

	do := func(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("matched route returns JSON with path and query payload", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)

		rec := do(h, httptest.NewRequest(http.MethodGet, "/users/42?verbose=yes", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, CacheContentType, rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, map[string]any{"id": "42", "verbose": "yes"}, body["payload"])
	})

	t.Run("JSON body merges over query on collision", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)

		req := httptest.NewRequest(http.MethodPost, "/users/42?name=query", strings.NewReader(`{"name":"body","extra":7}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		rec := do(h, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		payload := body["payload"].(map[string]any)
		require.Equal(t, "body", payload["name"])
		require.Equal(t, float64(7), payload["extra"])
		require.Equal(t, "42", payload["id"])
	})

	t.Run("non-JSON body is ignored", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)

		req := httptest.NewRequest(http.MethodPost, "/users/42", strings.NewReader("name=form"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := do(h, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, map[string]any{"id": "42"}, body["payload"])
	})

	t.Run("nil response body yields 204", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)

		rec := do(h, httptest.NewRequest(http.MethodGet, "/empty", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Body.String())
	})

	t.Run("unmatched path yields a structured 404", func(t *testing.T) {
		t.Parallel()
		d := New()
		h := NewHTTPHandler(d)

		rec := do(h, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "route not found", body["error"])
	})

	t.Run("structured controller error surfaces status and meta", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)

		rec := do(h, httptest.NewRequest(http.MethodGet, "/teapot", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "short and stout", body["error"])
		require.Equal(t, map[string]any{"handle": true}, body["meta"])
	})

	t.Run("unstructured failure is a generic 500", func(t *testing.T) {
		t.Parallel()
		_, h := newServer(t)

		rec := do(h, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "internal server error", body["error"])
		require.NotContains(t, rec.Body.String(), "deadline")
	})

	t.Run("client address strips the port", func(t *testing.T) {
		t.Parallel()
		limits := &fakeLimiter{}
		d := New(WithRateLimiter(limits))
		d.MustRegister(NewRoute("/ip", echoController,
			WithRateLimit(RateLimitConfig{Max: 5, Window: time.Minute})))
		h := NewHTTPHandler(d)

		rec := do(h, httptest.NewRequest(http.MethodGet, "/ip", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ratelimit_192.0.2.1_GET_/ip", limits.gotCfg.Key)
	})

	t.Run("rate-limit headers pass through to the wire", func(t *testing.T) {
		t.Parallel()
		quota := &limiter.Quota{Limit: 5, Requests: 1, Window: time.Minute}
		d := New(WithRateLimiter(&fakeLimiter{quota: quota}))
		d.MustRegister(NewRoute("/limited", echoController,
			WithRateLimit(RateLimitConfig{Max: 5, Window: time.Minute})))
		h := NewHTTPHandler(d)

		rec := do(h, httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "5", rec.Header().Get(HeaderRateLimitLimit))
		require.Equal(t, "4", rec.Header().Get(HeaderRateLimitRemaining))
		require.Equal(t, "60", rec.Header().Get(HeaderRateLimitReset))
		require.Equal(t, "0", rec.Header().Get(HeaderRateLimitWait))
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("assigns a fresh ID and stores it in context", func(t *testing.T) {
		t.Parallel()
		var ctxID string
		d := New()
		d.MustRegister(NewRoute("/probe", func(ctx context.Context, _ map[string]any) (any, error) {
			if attr, ok := RequestIDExtractor()(ctx); ok {
				ctxID = attr.Value.String()
			}
			return "ok", nil
		}))
		h := NewHTTPHandler(d)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

		echoed := rec.Header().Get(DefaultRequestIDHeader)
		require.NotEmpty(t, echoed)
		require.Equal(t, echoed, ctxID)
	})

	t.Run("honors an inbound ID", func(t *testing.T) {
		t.Parallel()
		d := New()
		d.MustRegister(NewRoute("/probe", echoController))
		h := NewHTTPHandler(d)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(DefaultRequestIDHeader, "upstream-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, "upstream-123", rec.Header().Get(DefaultRequestIDHeader))
	})

	t.Run("custom header name", func(t *testing.T) {
		t.Parallel()
		d := New()
		d.MustRegister(NewRoute("/probe", echoController))
		h := NewHTTPHandler(d, WithRequestIDHeader("X-Trace-ID"))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
		require.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
		require.Empty(t, rec.Header().Get(DefaultRequestIDHeader))
	})
}

func TestIsJSON(t *testing.T) {
	t.Parallel()

	require.True(t, isJSON("application/json"))
	require.True(t, isJSON("application/json; charset=utf-8"))
	require.True(t, isJSON("application/problem+json"))
	require.False(t, isJSON(""))
	require.False(t, isJSON("text/plain"))
	require.False(t, isJSON("application/x-www-form-urlencoded"))
}
