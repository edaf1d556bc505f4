package bootstrap

import (
	"log/slog"
	"testing"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7070": ":7070",
		" 80 ":  ":80",
	}
	for input, want := range cases {
		if got := normalizeAddr(input); got != want {
			t.Fatalf("normalizeAddr(%q): expected %q, got %q", input, want, got)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q): expected %v, got %v", input, want, got)
		}
	}
}
