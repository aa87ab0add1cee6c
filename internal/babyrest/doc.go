// Package babyrest implements the BLE protocol for the Hatch Rest
// night light.
//
// The Rest exposes a vendor GATT service with two characteristics:
// a TX characteristic that accepts short ASCII command strings, and a
// feedback characteristic whose value encodes the full device state
// (power, colour, brightness, sound track, volume).
//
// A Device is obtained with Connect and holds the BLE link plus the
// last state read from the feedback characteristic. RefreshData reads
// and re-parses the feedback value; command methods (SetPower,
// SetColour, SetSound, SetVolume) write to the TX characteristic and
// then refresh so the cached state reflects the device.
//
// The go-ble library's characteristic reads and writes do not accept a
// context, so blocking calls are run in a goroutine and raced against
// ctx.Done(). A timed-out call abandons the in-flight operation; the
// next refresh resynchronises.
package babyrest
