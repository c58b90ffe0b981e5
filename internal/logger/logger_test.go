package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestZapLoggerWritesObjectField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.InfoObj("source fetched", "source_result", map[string]any{"id": "techcrunch", "count": 3})
	log.DebugObj("debug", "k", 1)

	entries := logs.FilterMessage("source fetched").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	obj, ok := fields["source_result"].(map[string]any)
	if !ok {
		t.Fatalf("expected source_result map field, got %#v", fields)
	}
	if obj["id"] != "techcrunch" {
		t.Fatalf("unexpected id %v", obj["id"])
	}
	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}
}

func TestPackageHelpersNoopBeforeInit(t *testing.T) {
	prev := S
	S = nil
	defer func() { S = prev }()

	InfoObj("x", "k", 1)
	WarnObj("x", "k", 1)
	ErrorObj("x", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
