package hatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
)

// Device combines the polling and command surfaces of a night light.
// Satisfied by *babyrest.Device.
type Device interface {
	DeviceClient
	CommandClient
}

// Dialer establishes a connection to a device. The default dials over
// BLE; tests substitute a fake.
type Dialer func(ctx context.Context, address, name string) (Device, error)

// defaultDialer discovers the device by address, then connects over BLE.
// The advertised local name fills in when no name was configured.
func defaultDialer(ctx context.Context, address, name string) (Device, error) {
	advertised, err := babyrest.Find(ctx, address)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = advertised
	}
	return babyrest.Connect(ctx, address, name)
}

// Entry is one configured device: its connection, coordinator and
// entities, tracked by the registry under a generated entry ID.
type Entry struct {
	// ID is the generated registry key for this entry.
	ID string

	// UniqueID is the device's stable identifier.
	UniqueID string

	// Address is the device's Bluetooth MAC address.
	Address string

	// Name is the advertised device name (may be empty).
	Name string

	// Device is the live connection.
	Device Device

	// Coordinator is the device's polling loop.
	Coordinator *Coordinator

	// Switch is the MQTT-facing entity.
	Switch *Switch
}

// SetupOptions holds configuration for setting up one device.
type SetupOptions struct {
	// Address is the device's Bluetooth MAC address. Required.
	Address string

	// UniqueID is the stable device identifier. Required.
	UniqueID string

	// Name is the configured display name (may be empty; the advertised
	// name is used instead when available).
	Name string

	// Interval between polls. Default: 30 seconds.
	Interval time.Duration

	// RefreshTimeout bounds a single refresh. Default: 10 seconds.
	RefreshTimeout time.Duration

	// MQTT is the transport for state and commands. Required.
	MQTT MQTTClient

	// Dial overrides the connection method. Default: BLE.
	Dial Dialer

	// Logger is optional structured logging.
	Logger Logger
}

// Setup connects to a device and brings its coordinator and entities
// online.
//
// The sequence:
//  1. Dial the device
//  2. Run an initial refresh so entities start with real state
//  3. Subscribe the switch to its command topic
//  4. Start the polling loop
//
// A device that cannot be reached or refreshed yields a *NotReadyError
// carrying the address; the caller should retry setup later.
//
// Parameters:
//   - ctx: Bounds the connection attempt and initial refresh
//   - opts: Device and wiring configuration
//
// Returns:
//   - *Entry: Live entry, already registered for polling
//   - error: *NotReadyError if the device is unreachable, or a
//     configuration error
func Setup(ctx context.Context, opts SetupOptions) (*Entry, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("hatch: address is required")
	}
	if opts.UniqueID == "" {
		return nil, ErrMissingIdentity
	}
	if opts.MQTT == nil {
		return nil, fmt.Errorf("hatch: mqtt client is required")
	}

	dial := opts.Dial
	if dial == nil {
		dial = defaultDialer
	}

	dev, err := dial(ctx, opts.Address, opts.Name)
	if err != nil {
		return nil, &NotReadyError{Address: opts.Address, Err: err}
	}

	coordinator := NewCoordinator(CoordinatorOptions{
		Client:         dev,
		Interval:       opts.Interval,
		RefreshTimeout: opts.RefreshTimeout,
		Logger:         opts.Logger,
	})

	// First refresh before anything subscribes; a device that connects
	// but won't answer is not ready.
	if err := coordinator.Refresh(); err != nil {
		dev.Disconnect() //nolint:errcheck // Best effort cleanup on error path
		return nil, &NotReadyError{Address: opts.Address, Err: err}
	}

	name := opts.Name
	if name == "" {
		name = dev.Name()
	}

	entity := NewEntity(coordinator, opts.UniqueID, opts.Address, name)
	sw := NewSwitch(entity, dev, opts.MQTT, opts.Logger)
	if err := sw.Start(); err != nil {
		dev.Disconnect() //nolint:errcheck // Best effort cleanup on error path
		return nil, err
	}

	coordinator.Start()

	return &Entry{
		ID:          uuid.NewString(),
		UniqueID:    opts.UniqueID,
		Address:     opts.Address,
		Name:        name,
		Device:      dev,
		Coordinator: coordinator,
		Switch:      sw,
	}, nil
}
