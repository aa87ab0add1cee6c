package babyrest

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

// Vendor GATT characteristic UUIDs for the Hatch Rest.
const (
	charTX       = "02240002-5efd-47eb-9c1a-de53f7a2b232"
	charFeedback = "02260002-5efd-47eb-9c1a-de53f7a2b232"
)

// transportOnce guards HCI transport initialisation. The go-ble library
// uses a process-wide default device.
var (
	transportOnce sync.Once
	transportErr  error
)

// InitTransport opens the HCI transport and registers it as the default
// BLE device. Safe to call multiple times; only the first call does work.
//
// Returns:
//   - error: If the HCI device cannot be opened (missing adapter,
//     insufficient permissions)
func InitTransport() error {
	transportOnce.Do(func() {
		d, err := linux.NewDevice()
		if err != nil {
			transportErr = fmt.Errorf("opening HCI device: %w", err)
			return
		}
		ble.SetDefaultDevice(d)
	})
	return transportErr
}

// Device is a connected Hatch Rest night light.
//
// It owns the BLE link, the two vendor characteristics, and the most
// recently read state.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - BLE operations are serialised; only one read or write is in
//     flight at a time.
type Device struct {
	address string
	name    string

	client   ble.Client
	tx       *ble.Characteristic
	feedback *ble.Characteristic

	// opMu serialises BLE reads and writes.
	opMu sync.Mutex

	// state is the last parsed feedback value.
	state   State
	stateMu sync.RWMutex

	connected bool
	connMu    sync.RWMutex
}

// Connect dials the device at the given address and discovers the vendor
// characteristics.
//
// The connection sequence:
//  1. Initialise the HCI transport (first call only)
//  2. Dial the peripheral
//  3. Discover the full GATT profile
//  4. Locate the TX and feedback characteristics
//
// The initial state read is left to the caller; a fresh connection has a
// zero State until RefreshData succeeds.
//
// Parameters:
//   - ctx: Bounds the dial and discovery. Cancellation aborts the attempt.
//   - address: Bluetooth MAC address (AA:BB:CC:DD:EE:FF)
//   - name: Advertised device name, if known (may be empty)
//
// Returns:
//   - *Device: Connected device handle
//   - error: ErrTransport wrapping the cause if any step fails
func Connect(ctx context.Context, address, name string) (*Device, error) {
	if err := InitTransport(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	client, err := ble.Dial(ctx, ble.NewAddr(address))
	if err != nil {
		return nil, fmt.Errorf("%w: dialling %s: %w", ErrTransport, address, err)
	}

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		client.CancelConnection() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: discovering profile: %w", ErrTransport, err)
	}

	tx := profile.FindCharacteristic(ble.NewCharacteristic(ble.MustParse(charTX)))
	if tx == nil {
		client.CancelConnection() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: tx %s", ErrCharacteristicMissing, charTX)
	}

	feedback := profile.FindCharacteristic(ble.NewCharacteristic(ble.MustParse(charFeedback)))
	if feedback == nil {
		client.CancelConnection() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: feedback %s", ErrCharacteristicMissing, charFeedback)
	}

	if name == "" {
		name = client.Name()
	}

	return &Device{
		address:   address,
		name:      name,
		client:    client,
		tx:        tx,
		feedback:  feedback,
		connected: true,
	}, nil
}

// Address returns the device's Bluetooth MAC address.
func (d *Device) Address() string {
	return d.address
}

// Name returns the advertised device name. May be empty if the device
// never advertised one.
func (d *Device) Name() string {
	return d.name
}

// IsConnected reports whether the BLE link is believed to be up.
func (d *Device) IsConnected() bool {
	d.connMu.RLock()
	defer d.connMu.RUnlock()
	return d.connected
}

// State returns the most recently read device state.
//
// The value is a copy; it does not change until the next successful
// RefreshData.
func (d *Device) State() State {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.state
}

// RefreshData reads the feedback characteristic and updates the cached
// state.
//
// go-ble reads do not take a context, so the read runs in a goroutine
// raced against ctx.Done(). On timeout the read result is discarded.
//
// Parameters:
//   - ctx: Bounds the read
//
// Returns:
//   - State: Freshly parsed device state
//   - error: ctx.Err() on timeout/cancellation, ErrTransport on link
//     failure, ErrInvalidFeedback on a malformed payload
func (d *Device) RefreshData(ctx context.Context) (State, error) {
	if !d.IsConnected() {
		return State{}, ErrNotConnected
	}

	d.opMu.Lock()
	defer d.opMu.Unlock()

	type readResult struct {
		data []byte
		err  error
	}
	resultCh := make(chan readResult, 1)

	go func() {
		data, err := d.client.ReadCharacteristic(d.feedback)
		resultCh <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return State{}, ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return State{}, fmt.Errorf("%w: reading feedback: %w", ErrTransport, res.err)
		}

		state, err := ParseFeedback(res.data)
		if err != nil {
			return State{}, err
		}

		d.stateMu.Lock()
		d.state = state
		d.stateMu.Unlock()

		return state, nil
	}
}

// writeTX writes a command payload to the TX characteristic, raced
// against ctx.Done() the same way as RefreshData.
func (d *Device) writeTX(ctx context.Context, payload []byte) error {
	if !d.IsConnected() {
		return ErrNotConnected
	}

	d.opMu.Lock()
	defer d.opMu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.client.WriteCharacteristic(d.tx, payload, false)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: writing command: %w", ErrTransport, err)
		}
		return nil
	}
}

// Disconnect tears down the BLE connection.
//
// Safe to call multiple times. Subsequent operations return
// ErrNotConnected.
func (d *Device) Disconnect() error {
	d.connMu.Lock()
	wasConnected := d.connected
	d.connected = false
	d.connMu.Unlock()

	if !wasConnected || d.client == nil {
		return nil
	}

	if err := d.client.CancelConnection(); err != nil {
		return fmt.Errorf("%w: disconnecting: %w", ErrTransport, err)
	}
	return nil
}
