// Package hatch bridges Hatch Rest night lights onto MQTT.
//
// Each configured device gets a Coordinator that polls it over BLE every
// 30 seconds (10 second refresh timeout), retains the last good snapshot
// across failures, and fans every refresh outcome out to listeners. The
// Switch entity publishes retained state messages and executes commands
// received on the device's command topic; Setup wires a device end to
// end and the Registry tracks live entries by generated entry ID.
//
// Refresh failures are classified into two stable causes: a deadline hit
// becomes "Connection timed out while fetching data from device", a BLE
// link failure becomes "Failed getting data from device". Anything else
// passes through unclassified. Polling always continues; a failed device
// surfaces through Available() and the health reporter.
//
// A device that cannot be dialled, or connects but fails its first
// refresh, returns *NotReadyError from Setup so the caller can retry
// later without tearing the bridge down.
package hatch
