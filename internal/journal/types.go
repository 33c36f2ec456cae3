package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Outcome string

const (
	OUTCOME_CONNECTED     Outcome = "connected"
	OUTCOME_DISCONNECTED  Outcome = "disconnected"
	OUTCOME_BIND_FAILED   Outcome = "bind_failed"
	OUTCOME_UNBIND_FAILED Outcome = "unbind_failed"
	OUTCOME_DELETE_FAILED Outcome = "delete_failed"
	OUTCOME_RECONCILED    Outcome = "reconciled"
)

const DefaultLimit = 50

var ErrNotFound = errors.New("no journal entry found")

type (
	Entry struct {
		ID          uuid.UUID `json:"id"`
		CreatedAt   time.Time `json:"created_at"`
		Outcome     Outcome   `json:"outcome"`
		Plugin      string    `json:"plugin"`
		Addr        string    `json:"addr"`
		Hash        string    `json:"hash"`
		ChannelUUID string    `json:"channel_uuid,omitempty"`
		Message     string    `json:"message,omitempty"`
	}

	// Store records workflow outcomes per sensor.
	Store interface {
		Record(ctx context.Context, entry Entry) (Entry, error)
		Latest(ctx context.Context, plugin, addr string) (Entry, error)
		List(ctx context.Context, limit int) ([]Entry, error)
	}
)

// Unresolved reports whether the entry leaves the device and middleware out of step.
func (e Entry) Unresolved() bool {
	return e.Outcome == OUTCOME_BIND_FAILED || e.Outcome == OUTCOME_UNBIND_FAILED
}
