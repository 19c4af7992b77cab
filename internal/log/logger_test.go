package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentStorage, Output: &buf})

	logger.Info("saved", FieldRecordID, 7)
	out := buf.String()
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "record_id=7") {
		t.Fatalf("unexpected output %q", out)
	}

	buf.Reset()
	logger.WithComponent(ComponentAnalytics).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record should be filtered at info level, got %q", buf.String())
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	logger := New(Config{Component: ComponentHTTP, Output: &bytes.Buffer{}})

	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("expected http logger in context, got %+v", got)
	}

	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("FromContext without logger should return the fallback")
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/panel/analytics/", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusUnprocessableEntity, 3, "127.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("4xx should log at warn: %q", buf.String())
	}

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("disk full"), OpCreate, nil)
	if !strings.Contains(buf.String(), "error=\"disk full\"") {
		t.Errorf("error field missing: %q", buf.String())
	}
}
