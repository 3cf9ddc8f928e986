package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL_ID", "C0TEST")
	t.Setenv("SLACK_BRIDGE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 3847 {
		t.Errorf("Port = %d, want 3847", cfg.Port)
	}
	if cfg.AskTimeout != 600*time.Second {
		t.Errorf("AskTimeout = %s, want 10m", cfg.AskTimeout)
	}
	if cfg.TerminalApp != "Ghostty" {
		t.Errorf("TerminalApp = %q, want Ghostty", cfg.TerminalApp)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ASK_TIMEOUT_SECONDS", "30")
	t.Setenv("TERMINAL_APP", "iTerm2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.AskTimeout != 30*time.Second {
		t.Errorf("AskTimeout = %s, want 30s", cfg.AskTimeout)
	}
	if cfg.TerminalApp != "iTerm2" {
		t.Errorf("TerminalApp = %q, want iTerm2", cfg.TerminalApp)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	content := "port: 4000\nslack_bot_token: xoxb-from-file\nslack_channel_id: C0FILE\nask_timeout_seconds: 120\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("SLACK_BRIDGE_CONFIG", path)
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("SLACK_CHANNEL_ID", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000 from file", cfg.Port)
	}
	if cfg.SlackBotToken != "xoxb-from-file" {
		t.Errorf("SlackBotToken = %q", cfg.SlackBotToken)
	}
	if cfg.AskTimeout != 120*time.Second {
		t.Errorf("AskTimeout = %s, want 2m", cfg.AskTimeout)
	}
}

func TestEnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	if err := os.WriteFile(path, []byte("port: 4000\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	setRequiredEnv(t)
	t.Setenv("SLACK_BRIDGE_CONFIG", path)
	t.Setenv("PORT", "5000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want env to win over file", cfg.Port)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing bot token", map[string]string{"SLACK_CHANNEL_ID": "C0TEST"}},
		{"missing channel", map[string]string{"SLACK_BOT_TOKEN": "xoxb-test"}},
		{"bad port", map[string]string{
			"SLACK_BOT_TOKEN":  "xoxb-test",
			"SLACK_CHANNEL_ID": "C0TEST",
			"PORT":             "70000",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SLACK_BRIDGE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			t.Setenv("SLACK_BOT_TOKEN", "")
			t.Setenv("SLACK_CHANNEL_ID", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	if err := os.WriteFile(path, []byte("port: [not a scalar\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	setRequiredEnv(t)
	t.Setenv("SLACK_BRIDGE_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}
