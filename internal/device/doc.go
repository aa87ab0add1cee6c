// Package device persists observed night-light state.
//
// Every successful refresh produces a full state snapshot; this package
// records those snapshots in SQLite so a history of device behaviour
// survives bridge restarts and can be inspected offline. The time-series
// database holds the same data for dashboards, but the local history is
// the durable copy.
package device
