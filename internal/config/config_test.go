package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "data/tasknest.db" || cfg.Locale != "ru" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 3 {
		t.Fatalf("expected default CORS origins, got %v", cfg.CORSOrigins)
	}
	if !strings.HasSuffix(cfg.StatePath, "state.json") {
		t.Fatalf("unexpected state path %q", cfg.StatePath)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := "addr: \":9000\"\nlocale: kk\ndb_path: from-file.db\ncors_origins:\n  - http://example.test\n"
	if err := os.WriteFile(filepath.Join(dir, "tasknest.yaml"), []byte(file), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKNEST_LOCALE", "en")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("addr", ":8080", "")
	if err := flags.Parse([]string{"--db", "from-flag.db"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("an unset flag must not override the file, got %q", cfg.Addr)
	}
	if cfg.Locale != "en" {
		t.Fatalf("env should override the file, got %q", cfg.Locale)
	}
	if cfg.DBPath != "from-flag.db" {
		t.Fatalf("flag should override everything, got %q", cfg.DBPath)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://example.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug, got %q", cfg.LogLevel)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatal("an explicit missing file must fail")
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TASKNEST_LOG_LEVEL", "loud")
	if _, err := Load("", nil); err == nil {
		t.Fatal("expected invalid log level error")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn"}.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected log output %q", out)
	}
}
