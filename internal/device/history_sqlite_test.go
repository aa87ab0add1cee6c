package device

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
	"github.com/FutureGUIs/hatchrest/internal/infrastructure/config"
	"github.com/FutureGUIs/hatchrest/internal/infrastructure/database"
	_ "github.com/FutureGUIs/hatchrest/migrations" // Register embedded migrations
)

// newTestRepository opens a migrated temp database and returns a repository.
func newTestRepository(t *testing.T) *SQLiteStateHistoryRepository {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return NewSQLiteStateHistoryRepository(db.DB)
}

func testState() babyrest.State {
	return babyrest.State{
		Power:      true,
		Red:        255,
		Green:      128,
		Blue:       0,
		Brightness: 200,
		Sound:      3,
		Volume:     40,
	}
}

func TestRecordState(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	t.Run("records and reads back", func(t *testing.T) {
		state := testState()
		if err := repo.RecordState(ctx, "aa:bb:cc:dd:ee:ff", state, StateHistorySourcePoll); err != nil {
			t.Fatalf("RecordState() error = %v", err)
		}

		entries, err := repo.GetHistory(ctx, "aa:bb:cc:dd:ee:ff", 10)
		if err != nil {
			t.Fatalf("GetHistory() error = %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("GetHistory() returned %d entries, want 1", len(entries))
		}

		got := entries[0]
		if got.State != state {
			t.Errorf("State = %+v, want %+v", got.State, state)
		}
		if got.Source != StateHistorySourcePoll {
			t.Errorf("Source = %q, want %q", got.Source, StateHistorySourcePoll)
		}
		if got.RecordedAt.IsZero() {
			t.Error("RecordedAt is zero")
		}
	})

	t.Run("empty device id rejected", func(t *testing.T) {
		if err := repo.RecordState(ctx, "", testState(), StateHistorySourcePoll); err == nil {
			t.Error("RecordState() with empty device id: expected error")
		}
	})

	t.Run("empty source defaults to poll", func(t *testing.T) {
		if err := repo.RecordState(ctx, "11:22:33:44:55:66", testState(), ""); err != nil {
			t.Fatalf("RecordState() error = %v", err)
		}

		entries, err := repo.GetHistory(ctx, "11:22:33:44:55:66", 1)
		if err != nil {
			t.Fatalf("GetHistory() error = %v", err)
		}
		if len(entries) != 1 || entries[0].Source != StateHistorySourcePoll {
			t.Errorf("expected source %q, got %+v", StateHistorySourcePoll, entries)
		}
	})
}

func TestGetHistory(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		off := babyrest.State{}
		on := testState()

		if err := repo.RecordState(ctx, "aa:bb:cc:dd:ee:ff", off, StateHistorySourcePoll); err != nil {
			t.Fatalf("RecordState() error = %v", err)
		}
		if err := repo.RecordState(ctx, "aa:bb:cc:dd:ee:ff", on, StateHistorySourceCommand); err != nil {
			t.Fatalf("RecordState() error = %v", err)
		}

		entries, err := repo.GetHistory(ctx, "aa:bb:cc:dd:ee:ff", 10)
		if err != nil {
			t.Fatalf("GetHistory() error = %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("GetHistory() returned %d entries, want 2", len(entries))
		}
		if !entries[0].State.Power {
			t.Error("expected newest entry first (power on)")
		}
	})

	t.Run("unknown device returns empty", func(t *testing.T) {
		entries, err := repo.GetHistory(ctx, "00:00:00:00:00:00", 10)
		if err != nil {
			t.Fatalf("GetHistory() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("GetHistory() returned %d entries, want 0", len(entries))
		}
	})

	t.Run("empty device id rejected", func(t *testing.T) {
		if _, err := repo.GetHistory(ctx, "", 10); err == nil {
			t.Error("GetHistory() with empty device id: expected error")
		}
	})
}

func TestPruneHistory(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.RecordState(ctx, "aa:bb:cc:dd:ee:ff", testState(), StateHistorySourcePoll); err != nil {
		t.Fatalf("RecordState() error = %v", err)
	}

	t.Run("recent entries survive", func(t *testing.T) {
		deleted, err := repo.PruneHistory(ctx, 24*time.Hour)
		if err != nil {
			t.Fatalf("PruneHistory() error = %v", err)
		}
		if deleted != 0 {
			t.Errorf("PruneHistory() deleted %d recent entries", deleted)
		}
	})

	t.Run("non-positive duration rejected", func(t *testing.T) {
		if _, err := repo.PruneHistory(ctx, 0); err == nil {
			t.Error("PruneHistory(0): expected error")
		}
	})
}
