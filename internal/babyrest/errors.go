package babyrest

import "errors"

// Sentinel errors for BLE operations.
var (
	// ErrNotConnected indicates an operation was attempted without a live
	// BLE connection.
	ErrNotConnected = errors.New("babyrest: not connected")

	// ErrDeviceNotFound indicates the device was not seen during scanning.
	ErrDeviceNotFound = errors.New("babyrest: device not found")

	// ErrTransport indicates a BLE read or write failed at the link layer.
	ErrTransport = errors.New("babyrest: transport failure")

	// ErrCharacteristicMissing indicates the vendor characteristics were
	// not found in the device's GATT profile.
	ErrCharacteristicMissing = errors.New("babyrest: characteristic missing")

	// ErrInvalidFeedback indicates the feedback payload did not match the
	// expected layout.
	ErrInvalidFeedback = errors.New("babyrest: invalid feedback payload")

	// ErrOutOfRange indicates a command argument was outside 0-255.
	ErrOutOfRange = errors.New("babyrest: value out of range")
)
