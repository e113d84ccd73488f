package config

import (
	"os"
	"strconv"
)

// Config is the top-level application configuration. Notification sections are
// optional; a channel with missing credentials is skipped at dispatch time.
type Config struct {
	App      *AppConfig      `json:"app" yaml:"app"`
	Mail     *MailConfig     `json:"mail,omitempty" yaml:"mail,omitempty"`
	Pushover *PushoverConfig `json:"pushover,omitempty" yaml:"pushover,omitempty"`
}

// AppConfig holds runtime settings
type AppConfig struct {
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file" yaml:"log_file"`
}

// MailConfig holds SMTP settings for the mail notification channel
type MailConfig struct {
	Server   string `json:"server" yaml:"server"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	To       string `json:"to" yaml:"to"`
}

// PushoverConfig holds credentials for the Pushover notification channel
type PushoverConfig struct {
	UserKey  string `json:"user_key" yaml:"user_key"`
	APIToken string `json:"api_token" yaml:"api_token"`
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		LogLevel: getEnv("DINESCOUT_LOG_LEVEL", "info"),
		LogFile:  getEnv("DINESCOUT_LOG_FILE", ""),
	}
}

func NewMailConfig() *MailConfig {
	return &MailConfig{
		Server:   getEnv("EMAIL_SERVER", "smtp.gmail.com"),
		Port:     getEnvInt("EMAIL_PORT", 587),
		Username: getEnv("EMAIL_USERNAME", ""),
		Password: getEnv("EMAIL_PASSWORD", ""),
		To:       getEnv("EMAIL_TO", ""),
	}
}

func NewPushoverConfig() *PushoverConfig {
	return &PushoverConfig{
		UserKey:  getEnv("PUSHOVER_USER", ""),
		APIToken: getEnv("PUSHOVER_TOKEN", ""),
	}
}

// Configured reports whether the mail channel has usable credentials
func (c *MailConfig) Configured() bool {
	return c != nil && c.Username != "" && c.Password != ""
}

// Configured reports whether the pushover channel has usable credentials
func (c *PushoverConfig) Configured() bool {
	return c != nil && c.UserKey != "" && c.APIToken != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
