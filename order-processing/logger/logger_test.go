package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"order-fulfillment/order-processing/config"
)

func TestTemporalLoggerWritesKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tl := NewTemporalLogger(zap.New(core))

	tl.With("WorkflowID", "order-created-42").Info("Invoice rendered", "orderID", int64(42))
	tl.Debug("dropped below level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["WorkflowID"] != "order-created-42" {
		t.Fatalf("expected WorkflowID field, got %v", fields["WorkflowID"])
	}
	if fields["orderID"] != int64(42) {
		t.Fatalf("expected orderID 42, got %v", fields["orderID"])
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "loud"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewAddsServiceFields(t *testing.T) {
	cfg := config.DefaultConfig()
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if l == nil {
		t.Fatalf("expected logger")
	}
}
