package journal

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/database"
	"github.com/google/uuid"
)

type JournalQueries interface {
	CreateJournalEntry(ctx context.Context, arg database.CreateJournalEntryParams) (database.Journal, error)
	GetLatestJournalEntry(ctx context.Context, arg database.GetLatestJournalEntryParams) (database.Journal, error)
	GetJournalEntries(ctx context.Context, limit int32) ([]database.Journal, error)
}

type PostgresStore struct {
	queries JournalQueries
}

func NewPostgresStore(queries JournalQueries) *PostgresStore {
	return &PostgresStore{queries: queries}
}

func databaseJournalToEntry(j database.Journal) Entry {
	return Entry{
		ID:          j.ID,
		CreatedAt:   j.CreatedAt,
		Outcome:     Outcome(j.Outcome),
		Plugin:      j.Plugin,
		Addr:        j.Addr,
		Hash:        j.Hash,
		ChannelUUID: j.ChannelUuid,
		Message:     j.Message,
	}
}

func (s *PostgresStore) Record(ctx context.Context, entry Entry) (Entry, error) {
	slog.Debug(">>Record", "outcome", entry.Outcome, "plugin", entry.Plugin, "addr", entry.Addr)
	defer slog.Debug("<<Record")

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	j, err := s.queries.CreateJournalEntry(ctx, database.CreateJournalEntryParams{
		ID:          entry.ID,
		CreatedAt:   entry.CreatedAt,
		Outcome:     string(entry.Outcome),
		Plugin:      entry.Plugin,
		Addr:        entry.Addr,
		Hash:        entry.Hash,
		ChannelUuid: entry.ChannelUUID,
		Message:     entry.Message,
	})
	if err != nil {
		slog.Error("failed to save journal entry", "error", err)
		return Entry{}, err
	}

	return databaseJournalToEntry(j), nil
}

func (s *PostgresStore) Latest(ctx context.Context, plugin, addr string) (Entry, error) {
	j, err := s.queries.GetLatestJournalEntry(ctx, database.GetLatestJournalEntryParams{Plugin: plugin, Addr: addr})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	} else if err != nil {
		return Entry{}, err
	}

	return databaseJournalToEntry(j), nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.queries.GetJournalEntries(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, j := range rows {
		entries = append(entries, databaseJournalToEntry(j))
	}

	return entries, nil
}
