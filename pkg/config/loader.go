package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from the given path. When the path is empty
// the default location is tried; when no file exists at all, a config built
// from environment variables and defaults is returned.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	config := &Config{}
	ext := filepath.Ext(configPath)

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: JSON parsing failed: %v", ErrInvalidFormat, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: YAML parsing failed: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	mergeEnvVars(config)
	return config, nil
}

// SaveConfig saves configuration to the given path
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	ext := filepath.Ext(configPath)
	var data []byte
	var err error

	switch ext {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		return fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	if err != nil {
		return fmt.Errorf("config serialization failed: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func getDefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dinescout.yaml"
	}
	return filepath.Join(home, ".dinescout.yaml")
}

func getDefaultConfig() *Config {
	return &Config{
		App:      NewAppConfig(),
		Mail:     NewMailConfig(),
		Pushover: NewPushoverConfig(),
	}
}

// mergeEnvVars overlays environment variables on top of file-sourced values so
// credentials can be kept out of the config file.
func mergeEnvVars(config *Config) {
	if config.App == nil {
		config.App = NewAppConfig()
	}
	if v := os.Getenv("DINESCOUT_LOG_LEVEL"); v != "" {
		config.App.LogLevel = v
	}
	if v := os.Getenv("DINESCOUT_LOG_FILE"); v != "" {
		config.App.LogFile = v
	}

	if config.Mail == nil {
		config.Mail = NewMailConfig()
	} else {
		if v := os.Getenv("EMAIL_SERVER"); v != "" {
			config.Mail.Server = v
		}
		if v := os.Getenv("EMAIL_USERNAME"); v != "" {
			config.Mail.Username = v
		}
		if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
			config.Mail.Password = v
		}
		if v := os.Getenv("EMAIL_TO"); v != "" {
			config.Mail.To = v
		}
	}

	if config.Pushover == nil {
		config.Pushover = NewPushoverConfig()
	} else {
		if v := os.Getenv("PUSHOVER_USER"); v != "" {
			config.Pushover.UserKey = v
		}
		if v := os.Getenv("PUSHOVER_TOKEN"); v != "" {
			config.Pushover.APIToken = v
		}
	}
}
