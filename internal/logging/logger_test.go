package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{" DEBUG ", zapcore.DebugLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, testCase := range testCases {
		got, err := ParseLevel(testCase.input)
		if (err != nil) != testCase.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v", testCase.input, err)
		}
		if got != testCase.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", testCase.input, got, testCase.want)
		}
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	logger, err := NewLogger("warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info to be disabled at warn level")
	}
	if _, err := NewCLILogger("nope"); err == nil {
		t.Fatalf("expected unknown level error")
	}
}
