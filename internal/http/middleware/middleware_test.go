package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestLoggingMiddlewareGeneratesRequestID(t *testing.T) {
	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	LoggingMiddleware(nil, nil, next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if captured == "" {
		t.Fatal("expected request ID in context")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Fatalf("expected generated uuid, got %q", captured)
	}
	if got := rec.Header().Get("X-Request-ID"); got != captured {
		t.Fatalf("header %q does not match context %q", got, captured)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestLoggingMiddlewareKeepsValidRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-id_123")

	rec := httptest.NewRecorder()
	LoggingMiddleware(nil, nil, next).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "client-id_123" {
		t.Fatalf("got %q, want client-id_123", got)
	}
}

func TestLoggingMiddlewareReplacesMalformedRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "bad id with spaces!!")

	rec := httptest.NewRecorder()
	LoggingMiddleware(nil, nil, next).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got == "bad id with spaces!!" || got == "" {
		t.Fatalf("expected replacement id, got %q", got)
	}
}

func TestLoggingMiddlewareLogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	LoggingMiddleware(logger, nil, next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/today", nil))

	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("request complete")) {
		t.Fatalf("expected completion log, got %s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("418")) {
		t.Fatalf("expected status in log, got %s", out)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/games":            "/games/today",
		"/games/today":      "/games/today",
		"/games/abc-123":    "/games/:id",
		"/ws/games/abc-123": "/ws/games/:id",
		"/health":           "/health",
		"/ready":            "/ready",
		"/streams":          "/streams",
		"/other":            "/other",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequestIDFromContextMissing(t *testing.T) {
	if got := RequestIDFromContext(nil); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
