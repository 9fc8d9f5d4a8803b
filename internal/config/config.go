// Package config loads the YAML configuration of the uigen command.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the uigen configuration.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Agent   AgentConfig   `yaml:"agent"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig selects the language model.
type ModelConfig struct {
	APIKey string `yaml:"api_key"`
	Delay  string `yaml:"delay"` // pause between streamed characters of the mock model
}

// AgentConfig bounds agent runs.
type AgentConfig struct {
	MaxSteps int `yaml:"max_steps"`
}

// ServerConfig configures the HTTP server of the serve command.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	MaxBodySize     int64  `yaml:"max_body_size"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional JSON log file, next to the stderr output
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Delay: "15ms",
		},
		Agent: AgentConfig{
			MaxSteps: 10,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
			MaxBodySize:     1 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults. Environment
// variables override the file in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
	if addr := os.Getenv("UIGEN_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("UIGEN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if steps := os.Getenv("UIGEN_MAX_STEPS"); steps != "" {
		if n, err := strconv.Atoi(steps); err == nil {
			c.Agent.MaxSteps = n
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Agent.MaxSteps < 1 {
		return fmt.Errorf("invalid agent.max_steps %d: must be at least 1", c.Agent.MaxSteps)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	for name, value := range map[string]string{
		"model.delay":             c.Model.Delay,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			return fmt.Errorf("invalid %s %q: must be a non-negative duration", name, value)
		}
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("invalid server.max_body_size %d: must not be negative", c.Server.MaxBodySize)
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Logging.Level))); err != nil {
		return 0, fmt.Errorf("invalid logging.level %q: %w", c.Logging.Level, err)
	}
	return level, nil
}

// GetModelDelay returns the mock model delay as a duration.
func (c *Config) GetModelDelay() time.Duration {
	d, err := time.ParseDuration(c.Model.Delay)
	if err != nil {
		return 15 * time.Millisecond
	}
	return d
}

// GetShutdownTimeout returns the server shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
