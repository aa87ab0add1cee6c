package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefix for all bridge traffic.
const topicPrefix = "hatchrest"

// Topics provides methods for constructing MQTT topic strings.
//
// Topic structure:
//
//	hatchrest/state/{unique_id}    - Retained device state (bridge publishes)
//	hatchrest/command/{unique_id}  - Device commands (bridge subscribes)
//	hatchrest/health               - Bridge health reports (retained)
//	hatchrest/system/status        - Bridge online/offline status (retained, LWT)
type Topics struct{}

// DeviceState returns the retained state topic for a device.
//
// Example: hatchrest/state/f0:e1:d2:c3:b4:a5
func (Topics) DeviceState(uniqueID string) string {
	return fmt.Sprintf("%s/state/%s", topicPrefix, uniqueID)
}

// DeviceCommand returns the command topic for a device.
//
// Example: hatchrest/command/f0:e1:d2:c3:b4:a5
func (Topics) DeviceCommand(uniqueID string) string {
	return fmt.Sprintf("%s/command/%s", topicPrefix, uniqueID)
}

// AllCommands returns the wildcard subscription covering every device's
// command topic.
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+", topicPrefix)
}

// Health returns the bridge health report topic.
func (Topics) Health() string {
	return fmt.Sprintf("%s/health", topicPrefix)
}

// SystemStatus returns the bridge online/offline status topic.
// This is also the LWT topic.
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", topicPrefix)
}

// DeviceIDFromTopic extracts the device unique ID from a state or command
// topic. Returns an empty string if the topic does not match the expected
// shape.
func DeviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != topicPrefix {
		return ""
	}
	if parts[1] != "state" && parts[1] != "command" {
		return ""
	}
	return parts[2]
}
