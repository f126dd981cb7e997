package statement

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
)

func TestSetLoggerCapturesTokenizerDebug(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(logging.New(zap.New(core)))

	Tokenize("{{a}} b")

	entries := logs.FilterMessage("tokenization complete").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["token_count"]; got != int64(2) {
		t.Errorf("token_count = %v, want 2", got)
	}
}

func TestSetLoggerNilDiscards(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	SetLogger(nil)
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}
	if GetLogger().IsDebug() {
		t.Error("no-op logger reports debug enabled")
	}
	Tokenize("{{a}}")
}

func TestNoDebugEntriesAboveDebugLevel(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(logging.New(zap.New(core)))

	Parse("{{#if a}}")
	if n := logs.Len(); n != 0 {
		t.Errorf("got %d entries at info level, want 0", n)
	}
}
