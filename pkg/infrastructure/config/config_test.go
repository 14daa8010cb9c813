package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Worker.Count != 5 {
		t.Errorf("Expected default worker count 5, got %d", config.Worker.Count)
	}
	if config.Execution.MemoryMiB != 256 {
		t.Errorf("Expected default execution memory 256, got %d", config.Execution.MemoryMiB)
	}
	if config.Logging.Level != "info" {
		t.Errorf("Expected default log level info, got %s", config.Logging.Level)
	}
}

func TestConfigValidation(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("Valid config failed validation: %v", err)
	}

	config.Worker.Count = 0
	if err := config.Validate(); err == nil {
		t.Error("Zero worker count should fail validation")
	}

	config = DefaultConfig()
	config.Logging.Level = "invalid"
	if err := config.Validate(); err == nil {
		t.Error("Invalid log level should fail validation")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	os.Setenv("EXECENGINE_WORKER_COUNT", "9")
	os.Setenv("EXECENGINE_LOG_LEVEL", "debug")
	os.Setenv("EXECENGINE_QUEUE_NAME", "custom-queue")
	defer func() {
		os.Unsetenv("EXECENGINE_WORKER_COUNT")
		os.Unsetenv("EXECENGINE_LOG_LEVEL")
		os.Unsetenv("EXECENGINE_QUEUE_NAME")
	}()

	config := DefaultConfig()
	config.applyEnvironmentOverrides()

	if config.Worker.Count != 9 {
		t.Errorf("Environment override failed for worker count, got %d", config.Worker.Count)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Environment override failed for log level, got %s", config.Logging.Level)
	}
	if config.Queue.Name != "custom-queue" {
		t.Errorf("Environment override failed for queue name, got %s", config.Queue.Name)
	}
}

func TestConfigFileOperations(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "execengine_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.json")

	config := DefaultConfig()
	config.Worker.Count = 12

	if err := config.SaveToFile(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.Worker.Count != 12 {
		t.Errorf("Config not loaded correctly, got %d", loadedConfig.Worker.Count)
	}
}

func TestLoadNonexistentConfig(t *testing.T) {
	config, err := LoadConfig("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Loading non-existent config should not error: %v", err)
	}

	if config.Worker.Count != 5 {
		t.Errorf("Non-existent config should use defaults, got %d", config.Worker.Count)
	}
}
