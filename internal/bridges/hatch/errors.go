package hatch

import (
	"errors"
	"fmt"
)

// Refresh failure causes. These exact strings are surfaced to operators
// in logs and health output, so they stay stable.
const (
	// CauseTimeout is reported when a refresh exceeds its deadline.
	CauseTimeout = "Connection timed out while fetching data from device"

	// CauseFetchFailed is reported when the BLE link fails mid-refresh.
	CauseFetchFailed = "Failed getting data from device"
)

// ErrMissingIdentity is returned when a device descriptor is requested
// but no unique ID is available to build one.
var ErrMissingIdentity = errors.New("hatch: device has no unique id")

// ErrEntryNotFound is returned when a registry lookup misses.
var ErrEntryNotFound = errors.New("hatch: entry not found")

// ErrDuplicateEntry is returned when an entry ID is already registered.
var ErrDuplicateEntry = errors.New("hatch: entry already registered")

// UpdateFailedError indicates a refresh attempt failed. The coordinator
// keeps its previous snapshot and continues polling.
type UpdateFailedError struct {
	// Cause is one of the failure cause strings above.
	Cause string

	// Err is the underlying error, if any.
	Err error
}

// Error returns the failure cause.
func (e *UpdateFailedError) Error() string {
	return e.Cause
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *UpdateFailedError) Unwrap() error {
	return e.Err
}

// NotReadyError indicates device setup could not complete because the
// device is unreachable. Setup should be retried later.
type NotReadyError struct {
	// Address is the device's Bluetooth MAC address.
	Address string

	// Err is the underlying error, if any.
	Err error
}

// Error includes the address so operators can tell which device failed.
func (e *NotReadyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hatch: device %s not ready: %v", e.Address, e.Err)
	}
	return fmt.Sprintf("hatch: device %s not ready", e.Address)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *NotReadyError) Unwrap() error {
	return e.Err
}
