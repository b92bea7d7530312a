package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"info":    zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"debug":   zapcore.DebugLevel,
		"verbose": defaultZapLevel,
		"":        defaultZapLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Errorf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_SetLevel(t *testing.T) {
	t.Parallel()

	l := newZapLogger(InfoLevel)
	if l.Level() != "info" {
		t.Fatalf("initial level: want info, got %s", l.Level())
	}
	if l.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug must be disabled at info level")
	}

	l.SetLevel(DebugLevel)
	if !l.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug must be enabled after SetLevel(debug)")
	}
	if l.Level() != "debug" {
		t.Fatalf("level: want debug, got %s", l.Level())
	}
}

func TestNop_DiscardsWithoutPanicking(t *testing.T) {
	t.Parallel()

	l := Nop()
	l.Infow("ignored", "k", "v")
	l.SetLevel(ErrorLevel)
}
