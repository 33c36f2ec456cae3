package journal

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/database"
	"github.com/google/uuid"
)

type mockJournalQueries struct {
	created []database.CreateJournalEntryParams
	latest  database.Journal
	err     error
}

func (m *mockJournalQueries) CreateJournalEntry(ctx context.Context, arg database.CreateJournalEntryParams) (database.Journal, error) {
	m.created = append(m.created, arg)
	return database.Journal{
		ID:          arg.ID,
		CreatedAt:   arg.CreatedAt,
		Outcome:     arg.Outcome,
		Plugin:      arg.Plugin,
		Addr:        arg.Addr,
		Hash:        arg.Hash,
		ChannelUuid: arg.ChannelUuid,
		Message:     arg.Message,
	}, nil
}

func (m *mockJournalQueries) GetLatestJournalEntry(ctx context.Context, arg database.GetLatestJournalEntryParams) (database.Journal, error) {
	return m.latest, m.err
}

func (m *mockJournalQueries) GetJournalEntries(ctx context.Context, limit int32) ([]database.Journal, error) {
	return []database.Journal{m.latest}, m.err
}

func TestPostgresStore(t *testing.T) {
	t.Run("should assign id and timestamp on record", func(t *testing.T) {
		queries := &mockJournalQueries{}
		store := NewPostgresStore(queries)

		e, err := store.Record(context.Background(), Entry{Outcome: OUTCOME_BIND_FAILED, Plugin: "1wire", Addr: "28-17B6", ChannelUUID: "X"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if e.ID == uuid.Nil || e.CreatedAt.IsZero() {
			t.Errorf("expected id and timestamp, got %+v", e)
		}

		if len(queries.created) != 1 || queries.created[0].Outcome != "bind_failed" {
			t.Errorf("unexpected insert %+v", queries.created)
		}
	})

	t.Run("should map no rows to ErrNotFound", func(t *testing.T) {
		store := NewPostgresStore(&mockJournalQueries{err: sql.ErrNoRows})

		if _, err := store.Latest(context.Background(), "1wire", "28-17B6"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should convert the latest entry", func(t *testing.T) {
		store := NewPostgresStore(&mockJournalQueries{latest: database.Journal{Outcome: "unbind_failed", Plugin: "gpio", Addr: "17"}})

		e, err := store.Latest(context.Background(), "gpio", "17")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !e.Unresolved() {
			t.Errorf("expected an unresolved entry, got %+v", e)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.Record(ctx, Entry{Outcome: OUTCOME_CONNECTED, Plugin: "1wire", Addr: "a", CreatedAt: base})
	store.Record(ctx, Entry{Outcome: OUTCOME_BIND_FAILED, Plugin: "1wire", Addr: "b", CreatedAt: base.Add(time.Second)})
	store.Record(ctx, Entry{Outcome: OUTCOME_DISCONNECTED, Plugin: "1wire", Addr: "a", CreatedAt: base.Add(2 * time.Second)})

	t.Run("should return the latest entry for a sensor", func(t *testing.T) {
		e, err := store.Latest(ctx, "1wire", "a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if e.Outcome != OUTCOME_DISCONNECTED {
			t.Errorf("expected disconnected, got %s", e.Outcome)
		}
	})

	t.Run("should list newest first", func(t *testing.T) {
		entries, _ := store.List(ctx, 2)
		if len(entries) != 2 || entries[0].Outcome != OUTCOME_DISCONNECTED || entries[1].Outcome != OUTCOME_BIND_FAILED {
			t.Errorf("unexpected entries %+v", entries)
		}
	})

	t.Run("should drop the oldest entry past the limit", func(t *testing.T) {
		store.Record(ctx, Entry{Outcome: OUTCOME_RECONCILED, Plugin: "1wire", Addr: "b"})

		entries, _ := store.List(ctx, 10)
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		if entries[2].Outcome != OUTCOME_BIND_FAILED {
			t.Errorf("expected the first entry dropped, got %+v", entries)
		}
	})

	t.Run("should report unknown sensors", func(t *testing.T) {
		if _, err := store.Latest(ctx, "wifi", "wlan"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
