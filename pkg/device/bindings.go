package device

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/database"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

type BindingQueries interface {
	GetSensorBindings(ctx context.Context) ([]database.SensorBinding, error)
	SaveSensorBinding(ctx context.Context, arg database.SaveSensorBindingParams) (database.SensorBinding, error)
	DeleteSensorBinding(ctx context.Context, arg database.DeleteSensorBindingParams) error
}

type PostgresBindings struct {
	queries BindingQueries
}

func NewPostgresBindings(queries BindingQueries) *PostgresBindings {
	return &PostgresBindings{queries: queries}
}

func (b *PostgresBindings) Load(ctx context.Context) (map[string]string, error) {
	slog.Debug(">>PostgresBindings.Load")
	defer slog.Debug("<<PostgresBindings.Load")

	rows, err := b.queries.GetSensorBindings(ctx)
	if err != nil {
		return nil, err
	}

	uuids := make(map[string]string, len(rows))
	for _, row := range rows {
		uuids[sensor.Key(row.Plugin, row.Addr)] = row.ChannelUuid
	}

	return uuids, nil
}

func (b *PostgresBindings) Save(ctx context.Context, plugin, addr, uuid string) error {
	_, err := b.queries.SaveSensorBinding(ctx, database.SaveSensorBindingParams{
		Plugin:      plugin,
		Addr:        addr,
		ChannelUuid: uuid,
		UpdatedAt:   time.Now().UTC(),
	})

	return err
}

func (b *PostgresBindings) Delete(ctx context.Context, plugin, addr string) error {
	return b.queries.DeleteSensorBinding(ctx, database.DeleteSensorBindingParams{
		Plugin: plugin,
		Addr:   addr,
	})
}

// MemoryBindings keeps bindings for the lifetime of the process.
type MemoryBindings struct {
	mu    sync.Mutex
	uuids map[string]string
}

func NewMemoryBindings() *MemoryBindings {
	return &MemoryBindings{uuids: make(map[string]string)}
}

func (b *MemoryBindings) Load(ctx context.Context) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	uuids := make(map[string]string, len(b.uuids))
	for k, v := range b.uuids {
		uuids[k] = v
	}

	return uuids, nil
}

func (b *MemoryBindings) Save(ctx context.Context, plugin, addr, uuid string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.uuids[sensor.Key(plugin, addr)] = uuid
	return nil
}

func (b *MemoryBindings) Delete(ctx context.Context, plugin, addr string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.uuids, sensor.Key(plugin, addr))
	return nil
}
