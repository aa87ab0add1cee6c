// Package influxdb provides time-series telemetry for the Hatch Rest bridge.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched writes and health monitoring.
//
// The bridge records one light_state point per successful poll and one
// poll_result point per refresh attempt (success or failure), giving a
// long-term view of device behaviour and BLE link reliability.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteLightState("f0:e1:d2:c3:b4:a5", true, 255, 128, 0, 200, 3, 40)
//
// Writes are non-blocking and batched according to config.yaml settings
// (batch_size, flush_interval). Async write errors are delivered via the
// SetOnError callback. InfluxDB is optional: when disabled in config,
// Connect returns ErrDisabled and the bridge runs without telemetry.
package influxdb
