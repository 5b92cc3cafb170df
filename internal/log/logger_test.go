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

	"insighthunter/internal/core"

	"github.com/shopspring/decimal"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentWorker, Output: &buf})

	logger.Info("hello")
	logger.Debug("hidden")
	logger.WithComponent(ComponentSheets).Info("sheet")

	out := buf.String()
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "msg=hello") {
		t.Fatalf("missing component in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatal("debug record should be filtered at info level")
	}
	if !strings.Contains(out, "component=sheets") {
		t.Fatalf("WithComponent did not apply: %q", out)
	}
	if logger.Component() != ComponentWorker {
		t.Fatalf("Component() = %q", logger.Component())
	}
}

func TestLogFields(t *testing.T) {
	r := core.Report{ID: "r1", CompanyID: "demo-co", PeriodStart: "2025-01-01", PeriodEnd: "2025-01-31", NetIncome: decimal.NewFromInt(2900)}
	f := NewFields().WithReport(r).WithError(nil).WithOperation(OpReport)

	if f[FieldReportID] != "r1" || f[FieldNetIncome] != "2900" || f[FieldOperation] != OpReport {
		t.Fatalf("unexpected fields %v", f)
	}
	if _, ok := f[FieldError]; ok {
		t.Fatal("nil error must not add a field")
	}
	if f.WithError(errors.New("x"))[FieldError] != "x" {
		t.Fatal("error field not set")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("ToSlice length %d for %d fields", len(f.ToSlice()), len(f))
	}
}

func TestMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentHTTP, Output: &buf})

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("request id missing: %q", buf.String())
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected default logger %+v", l)
	}
}

func TestStructuredLogger_HTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	req := httptest.NewRequest(http.MethodPost, "/api/import/csv", nil)

	sl.LogHTTPEnd(context.Background(), req, 500, 3, "127.0.0.1")
	sl.LogHTTPEnd(context.Background(), req, 404, 3, "127.0.0.1")

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "level=WARN") {
		t.Fatalf("levels not mapped from status: %q", out)
	}
}
