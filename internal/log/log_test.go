package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestAppendCtx(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, nil)

	base := AppendCtx(context.Background(), slog.String("log_id", "01J"))
	ctx := AppendCtx(base, slog.Int64("user-id", 7))
	sibling := AppendCtx(base, slog.Int64("user-id", 9))

	logger.InfoContext(ctx, "hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode log record: %v", err)
	}
	if record["log_id"] != "01J" {
		t.Errorf("log_id = %v, want %q", record["log_id"], "01J")
	}
	if record["user-id"] != float64(7) {
		t.Errorf("user-id = %v, want 7", record["user-id"])
	}

	buf.Reset()
	logger.InfoContext(sibling, "hello")
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode log record: %v", err)
	}
	if record["user-id"] != float64(9) {
		t.Errorf("sibling context leaked attributes: user-id = %v", record["user-id"])
	}
}

func TestAppendCtx_NilParent(t *testing.T) {
	//nolint:staticcheck
	ctx := AppendCtx(nil, slog.String("k", "v"))
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
}

func TestWithAttrsKeepsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, nil).With(slog.String("component", "test"))

	logger.InfoContext(AppendCtx(context.Background(), slog.String("log_id", "abc")), "hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode log record: %v", err)
	}
	if record["log_id"] != "abc" || record["component"] != "test" {
		t.Errorf("unexpected record %v", record)
	}
}
