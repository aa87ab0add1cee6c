package mqtt

import (
	"encoding/json"
	"fmt"
)

// maxPayloadSize is the maximum allowed MQTT payload size (1MB).
// Larger payloads are rejected before publishing.
const maxPayloadSize = 1024 * 1024

// Publish sends a message to the specified MQTT topic.
//
// The payload is marshalled to JSON before publishing. The call blocks
// until the broker acknowledges the message or the publish timeout
// expires.
//
// Parameters:
//   - topic: Destination topic
//   - payload: Value to marshal as JSON
//   - retained: Whether the broker retains the message for new subscribers
//
// Returns:
//   - error: If marshalling fails, client is disconnected, or ack times out
func (c *Client) Publish(topic string, payload any, retained bool) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshalFailed, err)
	}

	if len(data) > maxPayloadSize {
		return fmt.Errorf("%w: %d bytes exceeds %d limit", ErrPayloadTooLarge, len(data), maxPayloadSize)
	}

	token := c.client.Publish(topic, byte(c.cfg.QoS), retained, data)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishRaw sends a pre-encoded payload to the specified MQTT topic.
//
// Use this when the payload is already serialised (for example a raw
// command echo). For structured messages prefer Publish.
func (c *Client) PublishRaw(topic string, payload []byte, retained bool) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %d bytes exceeds %d limit", ErrPayloadTooLarge, len(payload), maxPayloadSize)
	}

	token := c.client.Publish(topic, byte(c.cfg.QoS), retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
