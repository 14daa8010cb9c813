// Package config holds the engine's static configuration: worker pool
// sizing, execution resource caps, queue tuning, logging, and the API
// listener. A config.json on disk can be hot-reloaded via WatchFile.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all execengine configuration.
type Config struct {
	Worker    WorkerConfig    `json:"worker"`
	Execution ExecutionConfig `json:"execution"`
	Queue     QueueConfig     `json:"queue"`
	Logging   LoggingConfig   `json:"logging"`
	API       APIConfig       `json:"api"`
}

// WorkerConfig controls the worker pool supervisor.
type WorkerConfig struct {
	Count               int `json:"count"`
	PollTimeoutSeconds  int `json:"poll-timeout-seconds"`
	ShutdownGraceSeconds int `json:"shutdown-grace-seconds"`
}

// ExecutionConfig holds the execution resource caps. They are loaded and
// validated, but the sandbox runner does not read them: every run uses the
// fixed caps of sandbox.DefaultConfig.
type ExecutionConfig struct {
	TimeoutSeconds int `json:"timeout-seconds"`
	MemoryMiB      int `json:"memory-mib"`
}

// QueueConfig controls the job queue's status TTL and optional Postgres
// backend. Name and StatusPrefix are loaded but not read by either store.
type QueueConfig struct {
	Name             string `json:"name"`
	StatusPrefix     string `json:"status-prefix"`
	StatusTTLSeconds int    `json:"status-ttl-seconds"`
	PostgresDSN      string `json:"postgres-dsn,omitempty"`
}

// LoggingConfig holds logging configuration, grounded on the same shape
// infrastructure/logging.Config exposes.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
	File   string `json:"file"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Worker: WorkerConfig{
			Count:                5,
			PollTimeoutSeconds:   5,
			ShutdownGraceSeconds: 60,
		},
		Execution: ExecutionConfig{
			TimeoutSeconds: 10,
			MemoryMiB:      256,
		},
		Queue: QueueConfig{
			Name:             "execengine",
			StatusPrefix:     "execengine:status:",
			StatusTTLSeconds: 3600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "console",
			File:   "",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}
}

// LoadConfig loads configuration from file with environment variable
// overrides.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if err := config.loadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies environment variable overrides.
func (c *Config) applyEnvironmentOverrides() {
	if val := os.Getenv("EXECENGINE_WORKER_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Worker.Count = n
		}
	}
	if val := os.Getenv("EXECENGINE_WORKER_POLL_TIMEOUT_SECONDS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Worker.PollTimeoutSeconds = n
		}
	}
	if val := os.Getenv("EXECENGINE_WORKER_SHUTDOWN_GRACE_SECONDS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Worker.ShutdownGraceSeconds = n
		}
	}

	if val := os.Getenv("EXECENGINE_EXECUTION_TIMEOUT_SECONDS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Execution.TimeoutSeconds = n
		}
	}
	if val := os.Getenv("EXECENGINE_EXECUTION_MEMORY_MIB"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Execution.MemoryMiB = n
		}
	}

	if val := os.Getenv("EXECENGINE_QUEUE_NAME"); val != "" {
		c.Queue.Name = val
	}
	if val := os.Getenv("EXECENGINE_QUEUE_STATUS_PREFIX"); val != "" {
		c.Queue.StatusPrefix = val
	}
	if val := os.Getenv("EXECENGINE_QUEUE_STATUS_TTL_SECONDS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Queue.StatusTTLSeconds = n
		}
	}
	if val := os.Getenv("EXECENGINE_QUEUE_POSTGRES_DSN"); val != "" {
		c.Queue.PostgresDSN = val
	}

	if val := os.Getenv("EXECENGINE_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("EXECENGINE_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}
	if val := os.Getenv("EXECENGINE_LOG_OUTPUT"); val != "" {
		c.Logging.Output = val
	}
	if val := os.Getenv("EXECENGINE_LOG_FILE"); val != "" {
		c.Logging.File = val
	}

	if val := os.Getenv("EXECENGINE_API_HOST"); val != "" {
		c.API.Host = val
	}
	if val := os.Getenv("EXECENGINE_API_PORT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.API.Port = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Worker.Count <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.Worker.PollTimeoutSeconds <= 0 {
		return fmt.Errorf("worker poll timeout must be positive")
	}
	if c.Worker.ShutdownGraceSeconds <= 0 {
		return fmt.Errorf("worker shutdown grace period must be positive")
	}

	if c.Execution.TimeoutSeconds <= 0 {
		return fmt.Errorf("execution timeout must be positive")
	}
	if c.Execution.MemoryMiB <= 0 {
		return fmt.Errorf("execution memory limit must be positive")
	}

	if c.Queue.Name == "" {
		return fmt.Errorf("queue name cannot be empty")
	}
	if c.Queue.StatusTTLSeconds <= 0 {
		return fmt.Errorf("queue status TTL must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	validOutputs := map[string]bool{"console": true, "file": true, "both": true}
	if !validOutputs[c.Logging.Output] {
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	if c.API.Host == "" {
		return fmt.Errorf("API host cannot be empty")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("API port must be between 1 and 65535")
	}

	return nil
}

// SaveToFile saves the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".execengine", "config.json"), nil
}

// PollTimeout returns the worker poll timeout as a time.Duration.
func (c WorkerConfig) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSeconds) * time.Second
}

// ShutdownGrace returns the worker shutdown grace period as a
// time.Duration.
func (c WorkerConfig) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceSeconds) * time.Second
}

// StatusTTL returns the queue status TTL as a time.Duration.
func (c QueueConfig) StatusTTL() time.Duration {
	return time.Duration(c.StatusTTLSeconds) * time.Second
}
