package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ROAM_CONFIG_DIR", t.TempDir())
	t.Setenv("SURREALDB_URL", "")
	t.Setenv("ROAM_LLM_MODEL", "")
	t.Setenv("ROAM_TEMPERATURE", "")

	cfg := Load()

	if cfg.SurrealDBURL != "ws://localhost:8000/rpc" {
		t.Errorf("default URL = %q", cfg.SurrealDBURL)
	}
	if cfg.LLMModel != "gpt-4-turbo" {
		t.Errorf("default model = %q", cfg.LLMModel)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("default temperature = %v", cfg.Temperature)
	}
	if cfg.MaxTokens != 500 {
		t.Errorf("default max tokens = %d", cfg.MaxTokens)
	}
}

func TestLoadFileOverlayAndEnvWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROAM_CONFIG_DIR", dir)

	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte("llm_model: from-file\nmax_tokens: 900\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ROAM_LLM_MODEL", "")
	cfg := Load()
	if cfg.LLMModel != "from-file" {
		t.Errorf("file overlay ignored, model = %q", cfg.LLMModel)
	}
	if cfg.MaxTokens != 900 {
		t.Errorf("file overlay ignored, max tokens = %d", cfg.MaxTokens)
	}

	// Environment beats the file.
	t.Setenv("ROAM_LLM_MODEL", "from-env")
	cfg = Load()
	if cfg.LLMModel != "from-env" {
		t.Errorf("env should win over file, model = %q", cfg.LLMModel)
	}
}

func TestLoadIgnoresMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROAM_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.LLMModel != "gpt-4-turbo" {
		t.Errorf("malformed file should leave defaults, model = %q", cfg.LLMModel)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
