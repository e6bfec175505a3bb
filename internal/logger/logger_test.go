package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("accepts known levels and formats", func(t *testing.T) {
		for _, level := range []string{"", "debug", "info", "warn", "error"} {
			for _, format := range []string{"", "json", "console"} {
				l, err := New(level, format)
				if err != nil {
					t.Errorf("New(%q, %q) error: %v", level, format, err)
					continue
				}
				_ = l.Sync()
			}
		}
	})

	t.Run("debug level enables debug logs", func(t *testing.T) {
		l, err := New("debug", "json")
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if ce := l.Check(zapcore.DebugLevel, "debug message"); ce == nil {
			t.Error("debug entry should be enabled")
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		if _, err := New("verbose", "json"); err == nil {
			t.Error("expected error for unknown level")
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		if _, err := New("info", "xml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
