package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/relaykit/relay/pkg/logger"
)

// requestIDKey is the context key for the per-request ID.
type requestIDKey struct{}

// DefaultRequestIDHeader is where the boundary reads and echoes request IDs.
const DefaultRequestIDHeader = "X-Request-ID"

type httpOptions struct {
	log             *slog.Logger
	requestIDHeader string
}

// HTTPOption configures the HTTP boundary.
type HTTPOption func(*httpOptions)

// WithHTTPLogger sets the boundary logger. Server-side failures (5xx) are
// logged with request detail; client errors are not.
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(o *httpOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithRequestIDHeader overrides the request-ID header name.
func WithRequestIDHeader(name string) HTTPOption {
	return func(o *httpOptions) {
		if name != "" {
			o.requestIDHeader = name
		}
	}
}

// NewHTTPHandler adapts a Dispatcher to net/http. It populates a
// RequestContext from the transport request, dispatches it, and maps the
// returned response or translated failure back onto the ResponseWriter.
//
// The handler resolves the client address behind proxies (X-Forwarded-For /
// X-Real-IP) and assigns every request an ID, honoring an inbound header
// value to preserve upstream tracing IDs.
func NewHTTPHandler(d *Dispatcher, opts ...HTTPOption) http.Handler {
	o := &httpOptions{
		log:             logger.NewNope(),
		requestIDHeader: DefaultRequestIDHeader,
	}
	for _, opt := range opts {
		opt(o)
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID(o.requestIDHeader))
	r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
		serve(d, o, w, req)
	})
	return r
}

// requestID assigns a unique ID to each request, stores it in the request
// context, and echoes it as a response header.
func requestID(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(header)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(header, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDExtractor returns a logger extractor that adds "request_id" to
// every log entry emitted within a request.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}

func serve(d *Dispatcher, o *httpOptions, w http.ResponseWriter, req *http.Request) {
	rc := &RequestContext{
		Path:                  req.URL.Path,
		Method:                req.Method,
		IP:                    clientIP(req),
		OriginalURL:           req.URL.RequestURI(),
		EncodedAuthentication: req.Header.Get("Authorization"),
		Payload:               decodePayload(req),
	}

	resp, err := d.MatchHandle(req.Context(), rc)
	if err != nil {
		writeError(o, w, req, err)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", CacheContentType)
	}
	w.WriteHeader(http.StatusOK)
	if encErr := json.NewEncoder(w).Encode(resp.Body); encErr != nil {
		o.log.ErrorContext(req.Context(), "failed to write response body",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("error", encErr.Error()),
		)
	}
}

// decodePayload merges query parameters with a JSON request body; body
// fields win on key collision. Query values arrive as strings - the
// validation step coerces them per the route schema.
func decodePayload(req *http.Request) map[string]any {
	p := make(map[string]any)
	for k, vs := range req.URL.Query() {
		if len(vs) > 0 {
			p[k] = vs[0]
		}
	}

	if req.Body != nil && isJSON(req.Header.Get("Content-Type")) {
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err == nil {
			for k, v := range body {
				p[k] = v
			}
		}
	}

	if len(p) == 0 {
		return nil
	}
	return p
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// writeError applies the single boundary-side translation and renders the
// triple as JSON. Unstructured failures never leak detail to the client.
func writeError(o *httpOptions, w http.ResponseWriter, req *http.Request, err error) {
	status, message, meta := Translate(err)

	if status >= http.StatusInternalServerError {
		o.log.ErrorContext(req.Context(), "request failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	body := map[string]any{"error": message}
	if len(meta) > 0 {
		body["meta"] = meta
	}

	w.Header().Set("Content-Type", CacheContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// clientIP returns the bare client address. chi's RealIP middleware has
// already folded proxy headers into RemoteAddr; strip the port if one
// remains.
func clientIP(req *http.Request) string {
	if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		return host
	}
	return req.RemoteAddr
}
