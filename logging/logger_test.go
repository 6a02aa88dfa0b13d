package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	lg, err := New("DEBUG", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lg.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug enabled")
	}

	lg, err = New("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lg.Core().Enabled(zapcore.DebugLevel) || !lg.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info as default level")
	}

	lg, err = New("warn", "console")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lg.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info disabled at warn")
	}
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Fatalf("expected error for invalid level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}
