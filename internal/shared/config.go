package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API        APIConfig        `toml:"api"`
	Auth       AuthConfig       `toml:"auth"`
	Database   DatabaseConfig   `toml:"database"`
	Generation GenerationConfig `toml:"generation"`
}

// APIConfig contains CRM endpoint settings.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TenantID       string `toml:"tenant_id"`
	CompanySlug    string `toml:"company_slug"`
	SampleRoomsURL string `toml:"sample_rooms_url"`
}

// AuthConfig contains token persistence settings.
type AuthConfig struct {
	TokenPath string `toml:"token_path"`
}

// DatabaseConfig contains local cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// GenerationConfig contains rendering poll-loop settings.
type GenerationConfig struct {
	PollIntervalSeconds int     `toml:"poll_interval_seconds"`
	RequestsPerSecond   float64 `toml:"requests_per_second"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
