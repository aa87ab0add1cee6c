// Hatch Rest Bridge - BLE to MQTT
//
// This is the main entry point for the Hatch Rest bridge. The bridge
// polls Hatch Rest night lights over Bluetooth Low Energy, publishes
// their state to MQTT, and executes commands received from the home
// automation core. State history is recorded to SQLite; telemetry
// optionally flows to InfluxDB.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/FutureGUIs/hatchrest/migrations"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
	"github.com/FutureGUIs/hatchrest/internal/bridges/hatch"
	"github.com/FutureGUIs/hatchrest/internal/device"
	"github.com/FutureGUIs/hatchrest/internal/infrastructure/config"
	"github.com/FutureGUIs/hatchrest/internal/infrastructure/database"
	"github.com/FutureGUIs/hatchrest/internal/infrastructure/influxdb"
	"github.com/FutureGUIs/hatchrest/internal/infrastructure/logging"
	"github.com/FutureGUIs/hatchrest/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hatch Rest bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "devices", len(cfg.Devices))

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// State history repository
	historyRepo := device.NewSQLiteStateHistoryRepository(db.DB)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Open the BLE transport. One HCI device serves every connection.
	if err := babyrest.InitTransport(); err != nil {
		return fmt.Errorf("initialising BLE transport: %w", err)
	}
	log.Info("BLE transport ready", "adapter", cfg.Bridge.Adapter)

	// Bring each configured device online
	registry := hatch.NewRegistry()
	defer func() {
		log.Info("unloading devices")
		registry.UnloadAll()
	}()

	for _, devCfg := range cfg.Devices {
		entry, setupErr := setupDevice(ctx, devCfg, cfg, mqttClient, historyRepo, influxClient, log)
		if setupErr != nil {
			var notReady *hatch.NotReadyError
			if errors.As(setupErr, &notReady) {
				// The device may be asleep or out of range; keep the
				// bridge up so the others still work.
				log.Warn("device not ready, skipping",
					"address", devCfg.NormalisedAddress(),
					"error", setupErr,
				)
				continue
			}
			return fmt.Errorf("setting up device %s: %w", devCfg.NormalisedAddress(), setupErr)
		}

		if addErr := registry.Add(entry); addErr != nil {
			return fmt.Errorf("registering device %s: %w", devCfg.NormalisedAddress(), addErr)
		}
		log.Info("device online",
			"address", entry.Address,
			"name", entry.Name,
			"unique_id", entry.UniqueID,
			"entry_id", entry.ID,
		)
	}

	if registry.Count() == 0 {
		log.Warn("no devices came online; will keep running so health reporting shows the outage")
	}

	// Start health reporting
	healthReporter := hatch.NewHealthReporter(hatch.HealthReporterConfig{
		BridgeID:  cfg.Bridge.ID,
		Version:   version,
		Publisher: mqttClient,
		Devices:   registry,
	})
	healthReporter.SetLogger(log)
	if err := healthReporter.PublishStarting(); err != nil {
		log.Warn("failed to publish starting status", "error", err)
	}
	healthReporter.Start(ctx)
	defer func() {
		log.Info("stopping health reporter")
		healthReporter.Stop()
	}()

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred cleanup runs in reverse order:
	// 1. Health reporter (final stopping status)
	// 2. Device registry (stop polling, disconnect BLE)
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("Hatch Rest bridge stopped")
	return nil
}

// setupDevice connects one configured device and wires its refresh
// outcomes into state history and telemetry.
//
// Parameters:
//   - ctx: Context for the connection attempt
//   - devCfg: The device's configuration entry
//   - cfg: Full bridge configuration (polling settings)
//   - mqttClient: Connected MQTT client
//   - historyRepo: State history repository
//   - influxClient: InfluxDB client (nil if disabled)
//   - log: Logger instance
//
// Returns:
//   - *hatch.Entry: Live entry ready for registration
//   - error: *hatch.NotReadyError if the device is unreachable
func setupDevice(
	ctx context.Context,
	devCfg config.DeviceConfig,
	cfg *config.Config,
	mqttClient *mqtt.Client,
	historyRepo device.StateHistoryRepository,
	influxClient *influxdb.Client,
	log *logging.Logger,
) (*hatch.Entry, error) {
	address := devCfg.NormalisedAddress()
	uniqueID := devCfg.ResolvedUniqueID()

	entry, err := hatch.Setup(ctx, hatch.SetupOptions{
		Address:        address,
		UniqueID:       uniqueID,
		Name:           devCfg.Name,
		Interval:       cfg.Polling.Interval,
		RefreshTimeout: cfg.Polling.RefreshTimeout,
		MQTT:           mqttClient,
		Logger:         log.With("device", uniqueID),
	})
	if err != nil {
		return nil, err
	}

	// Record every good snapshot to SQLite
	entry.Coordinator.AddListener(func(state babyrest.State, refreshErr error) {
		if refreshErr != nil {
			return
		}
		recordCtx, cancel := context.WithTimeout(context.Background(), cfg.Polling.RefreshTimeout)
		defer cancel()
		if recErr := historyRepo.RecordState(recordCtx, uniqueID, state, device.StateHistorySourcePoll); recErr != nil {
			log.Error("failed to record state history", "device", uniqueID, "error", recErr)
		}
	})

	// Telemetry to InfluxDB (writes are batched and non-blocking)
	if influxClient != nil {
		coordinator := entry.Coordinator
		coordinator.AddListener(func(state babyrest.State, refreshErr error) {
			influxClient.WritePollResult(uniqueID, refreshErr == nil, coordinator.LastRefreshDuration())
			if refreshErr == nil {
				influxClient.WriteLightState(uniqueID, state.Power,
					state.Red, state.Green, state.Blue, state.Brightness,
					state.Sound, state.Volume)
			}
		})
	}

	return entry, nil
}

// getConfigPath returns the configuration file path.
// Uses HATCHREST_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HATCHREST_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
