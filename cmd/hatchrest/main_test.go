package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("HATCHREST_CONFIG")
	defer os.Setenv("HATCHREST_CONFIG", originalEnv)

	os.Setenv("HATCHREST_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
bridge:
  id: test-bridge

devices:
  - address: "AA:BB:CC:DD:EE:FF"

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
    tls: false
  qos: 1
  reconnect:
    initial_delay: 1
    max_delay: 60

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("HATCHREST_CONFIG")
	defer os.Setenv("HATCHREST_CONFIG", originalEnv)
	os.Setenv("HATCHREST_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when database path is empty")
	}
}

// TestGetConfigPath verifies environment variable override.
func TestGetConfigPath(t *testing.T) {
	originalEnv := os.Getenv("HATCHREST_CONFIG")
	defer os.Setenv("HATCHREST_CONFIG", originalEnv)

	os.Setenv("HATCHREST_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	os.Setenv("HATCHREST_CONFIG", "/etc/hatchrest/config.yaml")
	if got := getConfigPath(); got != "/etc/hatchrest/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", got)
	}
}
