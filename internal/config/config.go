// Package config stores the Bexio connection settings. Values come from the
// config file under ~/.config/bexmcp, overridable via environment variables
// (a .env file in the working directory is honored).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Bexio API
	Token   string `json:"token,omitempty"`
	APIURL  string `json:"api_url,omitempty"`
	Timeout int    `json:"timeout,omitempty"` // seconds

	// Retry behaviour on transient remote failures
	MaxRetries int `json:"max_retries,omitempty"`
}

var (
	configDir  string
	configFile string
	current    *Config
)

func init() {
	// Use ~/.config/bexmcp for config
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	configDir = filepath.Join(home, ".config", "bexmcp")
	configFile = filepath.Join(configDir, "config.json")

	// a .env in the working directory is optional
	_ = godotenv.Load()
}

// Load reads the config from disk
func Load() (*Config, error) {
	if current != nil {
		return current, nil
	}

	current = &Config{}

	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return current, nil // Return default config
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, current); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return current, nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	// Ensure config directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	current = cfg
	return nil
}

// Get returns the current config, loading if necessary
func Get() *Config {
	if current == nil {
		_, _ = Load()
	}
	return current
}

// Set updates a config value by key
func Set(key, value string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	switch key {
	case "token", "access_token":
		cfg.Token = value
	case "api_url", "url":
		cfg.APIURL = value
	case "timeout":
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeout must be a number of seconds: %q", value)
		}
		cfg.Timeout = seconds
	case "max_retries", "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_retries must be a number: %q", value)
		}
		cfg.MaxRetries = retries
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return Save(cfg)
}

// Delete removes a config value
func Delete(key string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	switch key {
	case "token", "access_token":
		cfg.Token = ""
	case "api_url", "url":
		cfg.APIURL = ""
	case "timeout":
		cfg.Timeout = 0
	case "max_retries", "retries":
		cfg.MaxRetries = 0
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return Save(cfg)
}

// GetToken returns the Bexio access token (config or env)
func GetToken() string {
	cfg := Get()
	if cfg.Token != "" {
		return cfg.Token
	}
	return os.Getenv("BEXIO_ACCESS_TOKEN")
}

// GetAPIURL returns the Bexio base URL (config or env); empty means default
func GetAPIURL() string {
	cfg := Get()
	if cfg.APIURL != "" {
		return cfg.APIURL
	}
	return os.Getenv("BEXIO_API_URL")
}

// GetTimeout returns the request timeout (config or env); zero means default
func GetTimeout() time.Duration {
	cfg := Get()
	seconds := cfg.Timeout
	if seconds == 0 {
		seconds, _ = strconv.Atoi(os.Getenv("BEXIO_TIMEOUT"))
	}
	return time.Duration(seconds) * time.Second
}

// GetMaxRetries returns the retry budget (config or env); zero means default
func GetMaxRetries() int {
	cfg := Get()
	if cfg.MaxRetries != 0 {
		return cfg.MaxRetries
	}
	retries, _ := strconv.Atoi(os.Getenv("BEXIO_MAX_RETRIES"))
	return retries
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return configFile
}

// ListKeys returns configured values (token masked for display)
func ListKeys() map[string]string {
	cfg := Get()
	result := make(map[string]string)

	if cfg.Token != "" {
		result["token"] = maskKey(cfg.Token)
	} else if os.Getenv("BEXIO_ACCESS_TOKEN") != "" {
		result["token"] = maskKey(os.Getenv("BEXIO_ACCESS_TOKEN")) + " (env)"
	}

	if cfg.APIURL != "" {
		result["api_url"] = cfg.APIURL
	} else if os.Getenv("BEXIO_API_URL") != "" {
		result["api_url"] = os.Getenv("BEXIO_API_URL") + " (env)"
	}

	if cfg.Timeout != 0 {
		result["timeout"] = strconv.Itoa(cfg.Timeout)
	}

	if cfg.MaxRetries != 0 {
		result["max_retries"] = strconv.Itoa(cfg.MaxRetries)
	}

	return result
}

// maskKey shows only first 4 and last 4 characters
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
