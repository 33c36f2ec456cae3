package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KyleBrandon/vzero-dashboard/internal/journal"
	"github.com/KyleBrandon/vzero-dashboard/internal/middleware"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

// Disconnect clears the channel binding of the sensor on the device. With fullDelete the
// middleware channel is deleted first. A failed delete request aborts before the unbind, an
// exception from the middleware does not.
func (w *Workflow) Disconnect(ctx context.Context, s *sensor.Sensor, fullDelete bool) error {
	slog.Debug(">>Disconnect", "sensor", s.Key(), "uuid", s.UUID, "delete", fullDelete)
	defer slog.Debug("<<Disconnect")

	if !s.Connected() {
		return ErrNotConnected
	}

	release, err := w.acquire(s, OPERATION_DISCONNECT)
	if err != nil {
		return err
	}
	defer release()

	uuid := s.UUID
	deleted := false

	if fullDelete {
		err := w.channels.DeleteChannel(ctx, uuid)

		var exception *middleware.ExceptionError
		switch {
		case err == nil:
			deleted = true

		case errors.As(err, &exception):
			slog.Warn("middleware refused channel delete", "sensor", s.Key(), "uuid", uuid, "error", err)
			message := "Could not delete sensor " + s.Addr + " from middleware. Sensor will be disconnected instead. "
			message += "Middleware says: '" + exception.Message + "'"
			w.notifier.Notify(notices.LevelError, "Sensor not deleted", message, false)
			w.record(ctx, journal.OUTCOME_DELETE_FAILED, s, uuid, exception.Message)

		default:
			slog.Error("channel delete failed", "sensor", s.Key(), "uuid", uuid, "error", err)
			w.notifier.Notify(notices.LevelError, "Sensor not disconnected", "Could not disconnect sensor "+s.Addr+" from the middleware.", false)
			observe(OPERATION_DISCONNECT, "middleware_error")
			return err
		}
	}

	if err := w.device.SetSensorUUID(ctx, s.Plugin, s.Addr, ""); err != nil {
		slog.Error("failed to unbind channel on device", "sensor", s.Key(), "uuid", uuid, "error", err)
		w.notifier.Notify(notices.LevelError, "Sensor not disconnected", "Failed to delete middleware identifier from sensor "+s.Addr+".", false)
		w.record(ctx, journal.OUTCOME_UNBIND_FAILED, s, uuid, err.Error())
		observe(OPERATION_DISCONNECT, "unbind_failed")

		if deleted {
			return &InconsistencyError{Operation: OPERATION_DISCONNECT, Sensor: s.Key(), ChannelUUID: uuid, Err: err}
		}
		return err
	}

	s.UUID = ""
	w.notifier.Notify(notices.LevelSuccess, "Sensor disconnected", "The sensor "+s.Addr+" has been successfully disconnected. Sensor data will no longer be logged to the middleware.", false)
	w.refresh(s)
	w.record(ctx, journal.OUTCOME_DISCONNECTED, s, uuid, "")
	observe(OPERATION_DISCONNECT, "success")

	return nil
}
