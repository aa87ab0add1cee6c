// Package mqtt provides the MQTT transport for the Hatch Rest bridge.
//
// This package wraps paho.mqtt.golang with:
//   - Connection management with auto-reconnect and exponential backoff
//   - Last Will and Testament (LWT) on hatchrest/system/status
//   - Subscription tracking with automatic restore on reconnect
//   - JSON publishing with size limits and ack timeouts
//   - Panic recovery around message handlers
//
// Topic structure:
//
//	hatchrest/state/{unique_id}    - Retained device state
//	hatchrest/command/{unique_id}  - Inbound device commands
//	hatchrest/health               - Bridge health reports
//	hatchrest/system/status        - Online/offline status (LWT)
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	client.Subscribe(mqtt.Topics{}.AllCommands(), handleCommand)
//	client.Publish(mqtt.Topics{}.DeviceState(id), state, true)
package mqtt
