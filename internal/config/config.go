package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port               int
	SlackBotToken      string
	SlackSigningSecret string
	SlackChannelID     string
	SlackAPIBaseURL    string
	AskTimeout         time.Duration
	HistoryDBPath      string
	LogLevel           string
	TerminalApp        string
	// MCP adapter
	BridgeServerURL string
}

// fileConfig mirrors the optional YAML config file. Environment variables
// take precedence over file values; the file only supplies defaults for
// values the environment leaves unset.
type fileConfig struct {
	Port               int    `yaml:"port"`
	SlackBotToken      string `yaml:"slack_bot_token"`
	SlackSigningSecret string `yaml:"slack_signing_secret"`
	SlackChannelID     string `yaml:"slack_channel_id"`
	AskTimeoutSeconds  int    `yaml:"ask_timeout_seconds"`
	HistoryDBPath      string `yaml:"history_db_path"`
	LogLevel           string `yaml:"log_level"`
	TerminalApp        string `yaml:"terminal_app"`
}

func Load() (*Config, error) {
	fc, err := loadFile(envStr("SLACK_BRIDGE_CONFIG", defaultConfigPath()))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               envInt("PORT", coalesceInt(fc.Port, 3847)),
		SlackBotToken:      envStr("SLACK_BOT_TOKEN", fc.SlackBotToken),
		SlackSigningSecret: envStr("SLACK_SIGNING_SECRET", fc.SlackSigningSecret),
		SlackChannelID:     envStr("SLACK_CHANNEL_ID", fc.SlackChannelID),
		SlackAPIBaseURL:    envStr("SLACK_API_BASE_URL", "https://slack.com/api"),
		AskTimeout:         time.Duration(envInt("ASK_TIMEOUT_SECONDS", coalesceInt(fc.AskTimeoutSeconds, 600))) * time.Second,
		HistoryDBPath:      envStr("HISTORY_DB_PATH", coalesceStr(fc.HistoryDBPath, defaultDBPath())),
		LogLevel:           envStr("LOG_LEVEL", coalesceStr(fc.LogLevel, "info")),
		TerminalApp:        envStr("TERMINAL_APP", coalesceStr(fc.TerminalApp, "Ghostty")),
		BridgeServerURL:    envStr("BRIDGE_SERVER_URL", "http://localhost:3847"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.SlackBotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN must not be empty")
	}
	if c.SlackChannelID == "" {
		return fmt.Errorf("SLACK_CHANNEL_ID must not be empty")
	}
	if c.AskTimeout < time.Second {
		return fmt.Errorf("ASK_TIMEOUT_SECONDS must be at least 1, got %s", c.AskTimeout)
	}
	if c.HistoryDBPath == "" {
		return fmt.Errorf("HISTORY_DB_PATH must not be empty")
	}
	return nil
}

// loadFile reads the YAML config file if it exists. A missing file is not
// an error; a malformed one is.
func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return fc, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "slack-bridge.yaml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "slack-bridge.db"
	}
	return filepath.Join(home, ".claude", "slack-bridge.db")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func coalesceInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func coalesceStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
