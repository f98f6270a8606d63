package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error = %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestStartSpanPropagatesTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := WithLogger(context.Background(), logger)

	ctx, parent := StartSpan(ctx, "parent")
	traceID := TraceIDFromContext(ctx)
	parentID := SpanIDFromContext(ctx)
	if traceID == "" || parentID == "" {
		t.Fatalf("expected trace and span ids, got %q/%q", traceID, parentID)
	}

	childCtx, child := StartSpan(ctx, "child")
	if TraceIDFromContext(childCtx) != traceID {
		t.Fatal("child span should share the parent trace")
	}
	if SpanIDFromContext(childCtx) == parentID {
		t.Fatal("child span should have its own id")
	}
	child.Fail(errors.New("boom"))
	child.End()
	parent.End()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var childEntry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &childEntry); err != nil {
		t.Fatalf("decode child entry: %v", err)
	}
	if childEntry["msg"] != "span failed" || childEntry["error"] != "boom" {
		t.Fatalf("unexpected child entry: %v", childEntry)
	}
	if childEntry["parent_span_id"] != parentID {
		t.Fatalf("expected parent span id %q, got %v", parentID, childEntry["parent_span_id"])
	}
	if childEntry["trace_id"] != traceID {
		t.Fatalf("expected trace id %q, got %v", traceID, childEntry["trace_id"])
	}
}

func TestRequestIDSeedsTrace(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected request id req-1, got %q", got)
	}
	if got := TraceIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected trace id to follow request id, got %q", got)
	}

	ctx, span := StartSpan(ctx, "work")
	defer span.End()
	if got := TraceIDFromContext(ctx); got != "req-1" {
		t.Fatalf("span should keep the request trace, got %q", got)
	}

	traced := WithRequestID(WithTraceID(context.Background(), "trace-9"), "req-2")
	if got := TraceIDFromContext(traced); got != "trace-9" {
		t.Fatalf("existing trace id should win, got %q", got)
	}
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("info entry should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), `"service":"vidtube"`) {
		t.Fatalf("expected service attribute, got %s", buf.String())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger without a stored logger")
	}
}
