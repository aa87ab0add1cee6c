package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default polling values. These mirror the Hatch Rest firmware's tolerance:
// the device drops idle connections aggressively, so anything much slower
// than 30 seconds risks a reconnect on every cycle.
const (
	defaultPollInterval   = 30 * time.Second
	defaultRefreshTimeout = 10 * time.Second
)

// macAddressPattern validates colon-separated Bluetooth hardware addresses.
var macAddressPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// Config is the root configuration structure for the Hatch Rest bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bridge   BridgeConfig   `yaml:"bridge"`
	Devices  []DeviceConfig `yaml:"devices"`
	Polling  PollingConfig  `yaml:"polling"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Database DatabaseConfig `yaml:"database"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BridgeConfig contains bridge-level identity settings.
type BridgeConfig struct {
	// ID identifies this bridge instance in MQTT health topics.
	ID string `yaml:"id"`

	// Adapter is the HCI adapter identifier (e.g., "hci0").
	// Empty selects the platform default adapter.
	Adapter string `yaml:"adapter"`
}

// DeviceConfig describes one Hatch Rest device to manage.
type DeviceConfig struct {
	// Address is the Bluetooth hardware address (AA:BB:CC:DD:EE:FF).
	Address string `yaml:"address"`

	// Name is an optional display name override. If empty, the name
	// reported by the device is used.
	Name string `yaml:"name"`

	// UniqueID is the stable identifier used in device descriptors.
	// If empty, the lowercased address is used.
	UniqueID string `yaml:"unique_id"`
}

// PollingConfig contains refresh cycle settings.
type PollingConfig struct {
	// Interval is the time between refresh cycles. Default: 30s.
	Interval time.Duration `yaml:"interval"`

	// RefreshTimeout bounds a single refresh attempt. Default: 10s.
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HATCHREST_SECTION_KEY
// For example: HATCHREST_DATABASE_PATH, HATCHREST_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			ID: "hatchrest-bridge",
		},
		Polling: PollingConfig{
			Interval:       defaultPollInterval,
			RefreshTimeout: defaultRefreshTimeout,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hatchrest-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/hatchrest.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HATCHREST_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("HATCHREST_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("HATCHREST_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HATCHREST_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HATCHREST_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("HATCHREST_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Device address for single-device deployments
	if v := os.Getenv("HATCHREST_DEVICE_ADDRESS"); v != "" {
		if len(cfg.Devices) == 0 {
			cfg.Devices = []DeviceConfig{{Address: v}}
		} else {
			cfg.Devices[0].Address = v
		}
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Bridge validation
	if c.Bridge.ID == "" {
		errs = append(errs, "bridge.id is required")
	}

	// Device validation
	if len(c.Devices) == 0 {
		errs = append(errs, "at least one device is required (set devices or HATCHREST_DEVICE_ADDRESS)")
	}
	for i, dev := range c.Devices {
		if dev.Address == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].address is required", i))
			continue
		}
		if !macAddressPattern.MatchString(dev.Address) {
			errs = append(errs, fmt.Sprintf("devices[%d].address %q is not a valid Bluetooth address", i, dev.Address))
		}
	}

	// Polling validation
	if c.Polling.Interval <= 0 {
		errs = append(errs, "polling.interval must be positive")
	}
	if c.Polling.RefreshTimeout <= 0 {
		errs = append(errs, "polling.refresh_timeout must be positive")
	}
	if c.Polling.RefreshTimeout >= c.Polling.Interval && c.Polling.Interval > 0 {
		errs = append(errs, "polling.refresh_timeout must be shorter than polling.interval")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// NormalisedAddress returns the device address in upper case, the canonical
// form used for BLE discovery and registry connections.
func (d DeviceConfig) NormalisedAddress() string {
	return strings.ToUpper(d.Address)
}

// ResolvedUniqueID returns the configured unique ID, falling back to the
// lowercased hardware address when none is set.
func (d DeviceConfig) ResolvedUniqueID() string {
	if d.UniqueID != "" {
		return d.UniqueID
	}
	return strings.ToLower(d.Address)
}
