// Package logging provides structured logging for the Hatch Rest bridge.
//
// This package wraps log/slog with:
//   - Config-driven level, format and output selection
//   - Default fields (service, version) on every record
//   - A Default() logger for early startup before config is loaded
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("bridge started", "devices", 1)
//
//	bleLog := log.With("component", "babyrest")
//	bleLog.Debug("characteristic read", "bytes", 20)
package logging
