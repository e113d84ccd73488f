package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.App == nil {
		t.Fatal("App config should not be nil")
	}
	if cfg.Mail == nil {
		t.Fatal("Mail config should not be nil")
	}
	if cfg.Pushover == nil {
		t.Fatal("Pushover config should not be nil")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_config.yaml")

	originalConfig := &Config{
		App: &AppConfig{
			LogLevel: "debug",
			LogFile:  "/tmp/test.log",
		},
		Mail: &MailConfig{
			Server:   "smtp.example.com",
			Port:     465,
			Username: "user@example.com",
			Password: "secret",
			To:       "alerts@example.com",
		},
		Pushover: &PushoverConfig{
			UserKey:  "ukey",
			APIToken: "token",
		},
	}

	if err := SaveConfig(originalConfig, tempFile); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedConfig, err := LoadConfig(tempFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.App.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", loadedConfig.App.LogLevel)
	}
	if loadedConfig.Mail.Server != "smtp.example.com" {
		t.Errorf("Expected server smtp.example.com, got %s", loadedConfig.Mail.Server)
	}
	if loadedConfig.Mail.Port != 465 {
		t.Errorf("Expected port 465, got %d", loadedConfig.Mail.Port)
	}
	if loadedConfig.Pushover.UserKey != "ukey" {
		t.Errorf("Expected user key ukey, got %s", loadedConfig.Pushover.UserKey)
	}
}

func TestEnvOverride(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_config.yaml")

	cfg := &Config{
		App:  &AppConfig{LogLevel: "info"},
		Mail: &MailConfig{Username: "file-user"},
	}
	if err := SaveConfig(cfg, tempFile); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	os.Setenv("EMAIL_USERNAME", "env-user")
	defer os.Unsetenv("EMAIL_USERNAME")

	loaded, err := LoadConfig(tempFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Mail.Username != "env-user" {
		t.Errorf("Expected env override env-user, got %s", loaded.Mail.Username)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(tempFile, []byte("x = 1"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(tempFile); err == nil {
		t.Error("Expected error for unsupported config format")
	}
}

func TestConfiguredHelpers(t *testing.T) {
	var mail *MailConfig
	if mail.Configured() {
		t.Error("nil mail config should not be configured")
	}
	mail = &MailConfig{Username: "u", Password: "p"}
	if !mail.Configured() {
		t.Error("mail config with credentials should be configured")
	}

	push := &PushoverConfig{UserKey: "u"}
	if push.Configured() {
		t.Error("pushover config without token should not be configured")
	}
}
