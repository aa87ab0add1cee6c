package mqtt

import "fmt"

// Subscribe registers a handler for messages on the given topic.
//
// The subscription is tracked and automatically restored if the connection
// drops and reconnects. Wildcard topics (+, #) are supported.
//
// Parameters:
//   - topic: Topic filter to subscribe to
//   - handler: Callback invoked for each received message
//
// Returns:
//   - error: If client is disconnected or the broker rejects the subscription
func (c *Client) Subscribe(topic string, handler func(topic string, payload []byte) error) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	qos := byte(c.cfg.QoS)
	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("%w: timeout subscribing to %s", ErrSubscribeFailed, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	// Track for re-subscription on reconnect
	c.subMu.Lock()
	c.subscriptions[topic] = subscription{
		topic:   topic,
		qos:     qos,
		handler: handler,
	}
	c.subMu.Unlock()

	return nil
}

// Unsubscribe removes the subscription for the given topic.
//
// Parameters:
//   - topic: Topic filter to unsubscribe from
//
// Returns:
//   - error: If client is disconnected or the broker rejects the request
func (c *Client) Unsubscribe(topic string) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("%w: timeout unsubscribing from %s", ErrSubscribeFailed, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()

	return nil
}
