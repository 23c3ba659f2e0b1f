package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigPrecedence(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")
	configContent := []byte(`
server:
  host: "127.0.0.1"
  port: 9090
  timeout: "1m"
  log_level: "debug"
analyzer:
  max_file_size: 500000
`)
	if err := os.WriteFile(configPath, configContent, 0644); err != nil {
		t.Fatal(err)
	}

	// Set environment variables (should override config file)
	os.Setenv("PIPESCOPE_SERVER_PORT", "9091")
	defer os.Unsetenv("PIPESCOPE_SERVER_PORT")

	// Load the configuration
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	// Test config file values
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1, got %s", cfg.Server.Host)
	}

	// Test environment variable override
	if cfg.Server.Port != 9091 {
		t.Errorf("expected port 9091, got %d", cfg.Server.Port)
	}

	// Test duration parsing
	expectedTimeout := time.Minute
	if cfg.Server.Timeout != expectedTimeout {
		t.Errorf("expected timeout %v, got %v", expectedTimeout, cfg.Server.Timeout)
	}

	// Test analyzer config
	if cfg.Analyzer.MaxFileSize != 500000 {
		t.Errorf("expected max file size 500000, got %d", cfg.Analyzer.MaxFileSize)
	}
	if len(cfg.Analyzer.ExcludedDirs) == 0 {
		t.Error("expected default excluded dirs to be preserved")
	}
}

func TestDefaultValues(t *testing.T) {
	// Load config without any file or env vars
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	// Test default values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Analyzer.MaxFileSize != 1000000 {
		t.Errorf("expected default max file size 1000000, got %d", cfg.Analyzer.MaxFileSize)
	}
	found := false
	for _, dir := range cfg.Analyzer.ExcludedDirs {
		if dir == "node_modules" {
			found = true
		}
	}
	if !found {
		t.Error("expected node_modules in default excluded dirs")
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
