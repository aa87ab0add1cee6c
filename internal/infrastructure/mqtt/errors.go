package mqtt

import "errors"

// Sentinel errors for MQTT operations.
var (
	// ErrConnectionFailed indicates the initial broker connection failed.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrNotConnected indicates an operation was attempted while disconnected.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrPublishFailed indicates a publish was not acknowledged by the broker.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed indicates a subscribe or unsubscribe request failed.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrMarshalFailed indicates the payload could not be serialised to JSON.
	ErrMarshalFailed = errors.New("mqtt: payload marshal failed")

	// ErrPayloadTooLarge indicates the payload exceeds the size limit.
	ErrPayloadTooLarge = errors.New("mqtt: payload too large")
)
