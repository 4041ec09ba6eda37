package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGlobalFunctionsBeforeInit(t *testing.T) {
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = saved }()

	// Must not panic without initialization
	Info("info")
	Warn("warn")
	Error("error")
	Debug("debug")
}

func TestInitLoggerWithOptions(t *testing.T) {
	saved := DefaultLoggingService
	defer func() { DefaultLoggingService = saved }()

	InitLoggerWithOptions(Options{Dir: t.TempDir(), Level: slog.LevelDebug})
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		t.Fatal("Expected initialized logging service")
	}

	Info("reminder raised", "kind", "due")
	if err := Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
