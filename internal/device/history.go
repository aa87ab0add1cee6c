package device

import (
	"context"
	"time"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
)

// State history source values.
const (
	// StateHistorySourcePoll marks entries written by the polling loop.
	StateHistorySourcePoll = "poll"

	// StateHistorySourceCommand marks entries written after a command
	// triggered an immediate refresh.
	StateHistorySourceCommand = "command"
)

// StateHistoryEntry represents a single recorded device state snapshot.
type StateHistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// DeviceID is the unique identifier of the device.
	DeviceID string `json:"device_id"`

	// State is the snapshot taken at RecordedAt.
	State babyrest.State `json:"state"`

	// Source identifies how the snapshot was recorded (poll, command).
	Source string `json:"source"`

	// RecordedAt is the timestamp of the snapshot (UTC).
	RecordedAt time.Time `json:"recorded_at"`
}

// StateHistoryRepository stores and retrieves device state snapshots.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// RecordState records a device state snapshot.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - deviceID: Unique device identifier
	//   - state: Snapshot to persist
	//   - source: Origin of the snapshot (poll, command)
	//
	// Returns:
	//   - error: nil on success, otherwise the underlying persistence error
	RecordState(ctx context.Context, deviceID string, state babyrest.State, source string) error

	// GetHistory returns recent snapshots for the device, newest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - deviceID: Unique device identifier
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []StateHistoryEntry: Ordered newest-first entries (may be empty)
	//   - error: nil on success, otherwise the underlying query error
	GetHistory(ctx context.Context, deviceID string, limit int) ([]StateHistoryEntry, error)
}
