package hatch

import (
	"time"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
)

// MQTT message types exchanged between the bridge and the home
// automation core.

// Protocol identifier carried in state messages.
const protocolID = "hatch_ble"

// StateMessage is published to hatchrest/state/{unique_id} after each
// successful refresh.
// QoS: per config, Retained: yes
type StateMessage struct {
	// DeviceID is the device's unique identifier.
	DeviceID string `json:"device_id"`

	// Timestamp is when the state was observed (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// State is the decoded night-light state.
	State StatePayload `json:"state"`

	// Protocol is the protocol identifier ("hatch_ble").
	Protocol string `json:"protocol"`

	// Address is the device's Bluetooth MAC address.
	Address string `json:"address"`
}

// StatePayload is the JSON shape of a night-light state.
type StatePayload struct {
	On         bool `json:"on"`
	Red        int  `json:"red"`
	Green      int  `json:"green"`
	Blue       int  `json:"blue"`
	Brightness int  `json:"brightness"`
	Sound      int  `json:"sound"`
	Volume     int  `json:"volume"`
}

// NewStateMessage builds a StateMessage from a device snapshot.
func NewStateMessage(deviceID, address string, state babyrest.State) StateMessage {
	return StateMessage{
		DeviceID:  deviceID,
		Timestamp: time.Now().UTC(),
		State: StatePayload{
			On:         state.Power,
			Red:        state.Red,
			Green:      state.Green,
			Blue:       state.Blue,
			Brightness: state.Brightness,
			Sound:      state.Sound,
			Volume:     state.Volume,
		},
		Protocol: protocolID,
		Address:  address,
	}
}

// Command names accepted on hatchrest/command/{unique_id}.
const (
	CommandTurnOn    = "turn_on"
	CommandTurnOff   = "turn_off"
	CommandSetColour = "set_colour"
	CommandSetSound  = "set_sound"
	CommandSetVolume = "set_volume"
)

// CommandMessage is received from the core to control a device.
// Topic: hatchrest/command/{unique_id}
type CommandMessage struct {
	// ID uniquely identifies this command for log correlation.
	ID string `json:"id,omitempty"`

	// Timestamp is when the command was issued (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp,omitempty"`

	// Command is the command name (turn_on, turn_off, set_colour,
	// set_sound, set_volume).
	Command string `json:"command"`

	// Parameters contains command-specific values.
	// Examples:
	//   {"red": 255, "green": 128, "blue": 0, "brightness": 200} for set_colour
	//   {"track": 3} for set_sound
	//   {"volume": 40} for set_volume
	Parameters map[string]any `json:"parameters,omitempty"`
}

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	// HealthHealthy indicates the bridge is operating normally.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates the bridge is operating with issues.
	HealthDegraded HealthStatus = "degraded"

	// HealthStarting indicates the bridge is starting up.
	HealthStarting HealthStatus = "starting"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is published to hatchrest/health.
// QoS: 1, Retained: yes
// Interval: every 30 seconds
type HealthMessage struct {
	// Bridge is the bridge identifier.
	Bridge string `json:"bridge"`

	// Timestamp is when the health status was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status indicates the current operational status.
	Status HealthStatus `json:"status"`

	// Version is the bridge software version.
	Version string `json:"version"`

	// UptimeSeconds is how long the bridge has been running.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// DevicesManaged is the number of devices with live coordinators.
	DevicesManaged int `json:"devices_managed"`

	// Reason explains the status (especially for degraded).
	Reason string `json:"reason,omitempty"`
}

// NewHealthMessage builds a HealthMessage with the current timestamp and
// uptime.
func NewHealthMessage(bridgeID, version string, status HealthStatus, deviceCount int, startTime time.Time) HealthMessage {
	return HealthMessage{
		Bridge:         bridgeID,
		Timestamp:      time.Now().UTC(),
		Status:         status,
		Version:        version,
		UptimeSeconds:  int64(time.Since(startTime).Seconds()),
		DevicesManaged: deviceCount,
	}
}
