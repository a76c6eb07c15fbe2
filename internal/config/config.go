package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config contains the program configuration
type Config struct {
	Key                 string  `yaml:"key"`
	Secret              string  `yaml:"secret"`
	UserAgent           string  `yaml:"user_agent"`
	APIURL              string  `yaml:"api_url"`
	Verbose             bool    `yaml:"verbose"`
	OutputDir           string  `yaml:"output_dir"`
	TimeoutSeconds      int     `yaml:"timeout_seconds"`
	WebPort             int     `yaml:"web_port"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		UserAgent:           "PhotosDiscogsClient/1.0",
		APIURL:              "https://api.discogs.com",
		OutputDir:           filepath.Join(homeDir(), "Pictures", "discogs"),
		TimeoutSeconds:      10,
		WebPort:             8080,
		ConfidenceThreshold: 0.7,
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
// DISCOGS_KEY and DISCOGS_SECRET override the file values.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	cfg.OutputDir = ExpandHome(cfg.OutputDir)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DISCOGS_KEY"); v != "" {
		cfg.Key = v
	}
	if v := os.Getenv("DISCOGS_SECRET"); v != "" {
		cfg.Secret = v
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./discogs.yaml",
		"./discogs.yml",
		filepath.Join(home, ".config", "discogs", "config.yaml"),
		filepath.Join(home, ".config", "discogs", "config.yml"),
		filepath.Join(home, ".discogs.yaml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the configuration to a YAML file. The file holds the
// API secret, so it is written 0600.
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "discogs", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "discogs", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("key cannot be empty (set it in the config file or DISCOGS_KEY)")
	}
	if c.Secret == "" {
		return fmt.Errorf("secret cannot be empty (set it in the config file or DISCOGS_SECRET)")
	}

	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url must start with http:// or https://")
	}

	if c.TimeoutSeconds < 1 || c.TimeoutSeconds > 120 {
		return fmt.Errorf("timeout_seconds must be between 1 and 120, got %d", c.TimeoutSeconds)
	}

	if c.WebPort < 1 || c.WebPort > 65535 {
		return fmt.Errorf("web_port must be between 1 and 65535, got %d", c.WebPort)
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be between 0.0 and 1.0, got %.2f", c.ConfidenceThreshold)
	}

	return nil
}
