package device

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// SQLiteStateHistoryRepository implements StateHistoryRepository using
// SQLite.
//
// Snapshots are stored as explicit columns in the state_history table,
// one row per observation.
type SQLiteStateHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteStateHistoryRepository creates a new SQLite state history
// repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteStateHistoryRepository: Repository instance ready for use
func NewSQLiteStateHistoryRepository(db *sql.DB) *SQLiteStateHistoryRepository {
	return &SQLiteStateHistoryRepository{db: db}
}

// RecordState inserts a new state snapshot for a device.
func (r *SQLiteStateHistoryRepository) RecordState(ctx context.Context, deviceID string, state babyrest.State, source string) error {
	if deviceID == "" {
		return fmt.Errorf("device id is required")
	}
	if source == "" {
		source = StateHistorySourcePoll
	}

	power := 0
	if state.Power {
		power = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO state_history
		 (device_id, power, red, green, blue, brightness, sound, volume, source, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		deviceID,
		power,
		state.Red,
		state.Green,
		state.Blue,
		state.Brightness,
		state.Sound,
		state.Volume,
		source,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting state history: %w", err)
	}

	return nil
}

// GetHistory returns recent snapshots for a device, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Unique device identifier
//   - limit: Maximum entries to return (default 50, max 200)
func (r *SQLiteStateHistoryRepository) GetHistory(ctx context.Context, deviceID string, limit int) ([]StateHistoryEntry, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, power, red, green, blue, brightness, sound, volume, source, recorded_at
		 FROM state_history
		 WHERE device_id = ?
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT ?`,
		deviceID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying state history: %w", err)
	}
	defer rows.Close()

	entries := make([]StateHistoryEntry, 0, limit)
	for rows.Next() {
		var entry StateHistoryEntry
		var power int
		var recordedAt string

		if err := rows.Scan(
			&entry.ID,
			&entry.DeviceID,
			&power,
			&entry.State.Red,
			&entry.State.Green,
			&entry.State.Blue,
			&entry.State.Brightness,
			&entry.State.Sound,
			&entry.State.Volume,
			&entry.Source,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning state history: %w", err)
		}

		entry.State.Power = power != 0

		timestamp, err := parseHistoryTimestamp(recordedAt)
		if err != nil {
			return nil, err
		}
		entry.RecordedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state history: %w", err)
	}

	return entries, nil
}

// PruneHistory deletes snapshots older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Retention window; entries older than now-olderThan are deleted
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteStateHistoryRepository) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM state_history WHERE recorded_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting state history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// parseHistoryTimestamp parses a timestamp stored in SQLite.
func parseHistoryTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("recorded_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing recorded_at: %w", err)
	}
	return timestamp, nil
}

// Interface compliance check.
var _ StateHistoryRepository = (*SQLiteStateHistoryRepository)(nil)
