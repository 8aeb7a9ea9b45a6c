package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New("debug")
	if err != nil {
		t.Fatalf("New() returned an error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("expected debug level to be enabled")
	}

	logger, err = New("")
	if err != nil {
		t.Fatalf("New() returned an error: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("expected default level to be info")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
}
