package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteLightState writes a full night-light state snapshot to InfluxDB.
//
// One point is written per poll, tagged with the device ID. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Unique identifier for the device
//   - power: Whether the light is on
//   - red, green, blue: Colour channels (0-255)
//   - brightness: Brightness level (0-255)
//   - sound: Active sound track number
//   - volume: Volume level (0-255)
func (c *Client) WriteLightState(deviceID string, power bool, red, green, blue, brightness, sound, volume int) {
	if !c.IsConnected() {
		return
	}

	powerValue := 0
	if power {
		powerValue = 1
	}

	point := write.NewPoint(
		"light_state",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"power":      powerValue,
			"red":        red,
			"green":      green,
			"blue":       blue,
			"brightness": brightness,
			"sound":      sound,
			"volume":     volume,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePollResult writes the outcome of a poll cycle.
//
// Used for tracking refresh reliability over time. Failed polls record
// the failure without any state fields.
//
// Parameters:
//   - deviceID: Device identifier
//   - success: Whether the refresh completed
//   - duration: How long the refresh took
func (c *Client) WritePollResult(deviceID string, success bool, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	successValue := 0
	if success {
		successValue = 1
	}

	point := write.NewPoint(
		"poll_result",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"success":     successValue,
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
