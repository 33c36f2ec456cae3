package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KyleBrandon/vzero-dashboard/internal/journal"
	"github.com/KyleBrandon/vzero-dashboard/internal/middleware"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

// Connect finds or creates the middleware channel owned by the sensor hash and binds its uuid
// on the device. Each of lookup, create and bind is issued at most once. On success s.UUID is
// set.
func (w *Workflow) Connect(ctx context.Context, s *sensor.Sensor) error {
	slog.Debug(">>Connect", "sensor", s.Key(), "hash", s.Hash)
	defer slog.Debug("<<Connect")

	if s.Connected() {
		return ErrAlreadyConnected
	}

	release, err := w.acquire(s, OPERATION_CONNECT)
	if err != nil {
		return err
	}
	defer release()

	lookup, err := w.channels.ChannelsByOwner(ctx, s.Hash)
	if err != nil {
		slog.Error("channel lookup failed", "sensor", s.Key(), "error", err)
		w.notifier.Notify(notices.LevelError, "Middleware error", "Could not connect to middleware.", false)
		observe(OPERATION_CONNECT, "middleware_error")
		return err
	}

	if err := lookup.Check(); err != nil {
		slog.Warn("channel lookup unsupported", "sensor", s.Key(), "error", err)
		w.notifier.Notify(notices.LevelWarning, "Middleware failed", "Could not perform middleware operation. Check middleware version (needs d63104b).", false)
	}

	uuid, found := lookup.Match()
	if !found {
		uuid, err = w.createChannel(ctx, s)
		if err != nil {
			observe(OPERATION_CONNECT, "create_failed")
			return err
		}
	} else {
		slog.Info("reusing channel", "sensor", s.Key(), "uuid", uuid)
	}

	if err := w.device.SetSensorUUID(ctx, s.Plugin, s.Addr, uuid); err != nil {
		slog.Error("failed to bind channel on device", "sensor", s.Key(), "uuid", uuid, "error", err)
		message := "Failed to update sensor " + s.Addr + " with middleware identifier."
		w.notifier.Notify(notices.LevelError, "Sensor not connected", message, false)
		w.record(ctx, journal.OUTCOME_BIND_FAILED, s, uuid, err.Error())
		observe(OPERATION_CONNECT, "bind_failed")
		return &InconsistencyError{Operation: OPERATION_CONNECT, Sensor: s.Key(), ChannelUUID: uuid, Err: err}
	}

	s.UUID = uuid
	w.notifier.Notify(notices.LevelSuccess, "Sensor associated", "The sensor "+s.Addr+" is now successfully connected. Sensor data will be directly logged to the middleware.", false)
	w.refresh(s)
	w.record(ctx, journal.OUTCOME_CONNECTED, s, uuid, "")
	observe(OPERATION_CONNECT, "success")

	return nil
}

func (w *Workflow) createChannel(ctx context.Context, s *sensor.Sensor) (string, error) {
	req := middleware.ChannelRequest{
		Type:  s.ChannelType(),
		Title: s.Addr,
		Owner: s.Hash,
	}

	uuid, err := w.channels.CreateChannel(ctx, req)
	if err == nil {
		return uuid, nil
	}

	slog.Error("failed to create channel", "sensor", s.Key(), "error", err)

	message := "Could not connect sensor " + s.Addr + " to the middleware."
	var exception *middleware.ExceptionError
	if errors.As(err, &exception) {
		message += fmt.Sprintf(" Middleware says: '%s'", exception.Message)
	}
	w.notifier.Notify(notices.LevelError, "Sensor not connected", message, false)

	return "", err
}
