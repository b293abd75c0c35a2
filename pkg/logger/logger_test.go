package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/lab_portal/pkg/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")
	log, _, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("upload finished")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "upload finished") {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestHertzLevel(t *testing.T) {
	cases := map[string]hlog.Level{
		"debug":   hlog.LevelDebug,
		"WARN":    hlog.LevelWarn,
		"error":   hlog.LevelError,
		"":        hlog.LevelInfo,
		"verbose": hlog.LevelInfo,
	}
	for input, want := range cases {
		if got := hertzLevel(input); got != want {
			t.Fatalf("hertzLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
