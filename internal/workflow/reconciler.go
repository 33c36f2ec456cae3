package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KyleBrandon/vzero-dashboard/internal/journal"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

// Reconcile retries the device side of the last connect or disconnect of the sensor when the
// journal shows it failed. It never touches the middleware.
func (w *Workflow) Reconcile(ctx context.Context, s *sensor.Sensor) error {
	slog.Debug(">>Reconcile", "sensor", s.Key())
	defer slog.Debug("<<Reconcile")

	if w.journal == nil {
		return ErrNothingToReconcile
	}

	release, err := w.acquire(s, OPERATION_RECONCILE)
	if err != nil {
		return err
	}
	defer release()

	entry, err := w.journal.Latest(ctx, s.Plugin, s.Addr)
	if errors.Is(err, journal.ErrNotFound) {
		return ErrNothingToReconcile
	} else if err != nil {
		slog.Error("failed to read journal", "sensor", s.Key(), "error", err)
		return err
	}

	var uuid string
	switch entry.Outcome {
	case journal.OUTCOME_BIND_FAILED:
		uuid = entry.ChannelUUID
	case journal.OUTCOME_UNBIND_FAILED:
		uuid = ""
	default:
		return ErrNothingToReconcile
	}

	if err := w.device.SetSensorUUID(ctx, s.Plugin, s.Addr, uuid); err != nil {
		slog.Error("reconcile failed", "sensor", s.Key(), "outcome", entry.Outcome, "error", err)
		w.notifier.Notify(notices.LevelError, "Sensor not reconciled", "Failed to update sensor "+s.Addr+" on the VZero.", false)
		observe(OPERATION_RECONCILE, "failed")
		return &InconsistencyError{Operation: OPERATION_RECONCILE, Sensor: s.Key(), ChannelUUID: entry.ChannelUUID, Err: err}
	}

	s.UUID = uuid
	if uuid != "" {
		w.notifier.Notify(notices.LevelSuccess, "Sensor associated", "The sensor "+s.Addr+" is now successfully connected. Sensor data will be directly logged to the middleware.", false)
	} else {
		w.notifier.Notify(notices.LevelSuccess, "Sensor disconnected", "The sensor "+s.Addr+" has been successfully disconnected. Sensor data will no longer be logged to the middleware.", false)
	}
	w.refresh(s)
	w.record(ctx, journal.OUTCOME_RECONCILED, s, entry.ChannelUUID, string(entry.Outcome))
	observe(OPERATION_RECONCILE, "success")

	return nil
}
