package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/KyleBrandon/vzero-dashboard/internal/journal"
	"github.com/KyleBrandon/vzero-dashboard/internal/middleware"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

const (
	OPERATION_CONNECT    = "connect"
	OPERATION_DISCONNECT = "disconnect"
	OPERATION_RECONCILE  = "reconcile"
)

var (
	ErrSensorBusy         = errors.New("sensor operation already in progress")
	ErrNotConnected       = errors.New("sensor is not connected")
	ErrAlreadyConnected   = errors.New("sensor is already connected")
	ErrNothingToReconcile = errors.New("nothing to reconcile")
)

type (
	DeviceBinder interface {
		SetSensorUUID(ctx context.Context, plugin, addr, uuid string) error
	}

	ChannelService interface {
		ChannelsByOwner(ctx context.Context, owner string) (middleware.Lookup, error)
		CreateChannel(ctx context.Context, req middleware.ChannelRequest) (string, error)
		DeleteChannel(ctx context.Context, uuid string) error
	}

	Notifier interface {
		Notify(level notices.Level, title, message string, force bool) string
	}

	Presenter interface {
		RefreshSensor(s sensor.Sensor)
	}

	Journal interface {
		Record(ctx context.Context, entry journal.Entry) (journal.Entry, error)
		Latest(ctx context.Context, plugin, addr string) (journal.Entry, error)
	}

	// InconsistencyError reports that one of device and middleware was updated and the other
	// was not.
	InconsistencyError struct {
		Operation   string
		Sensor      string
		ChannelUUID string
		Err         error
	}
)

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s of %s left channel %s inconsistent: %v", e.Operation, e.Sensor, e.ChannelUUID, e.Err)
}

func (e *InconsistencyError) Unwrap() error {
	return e.Err
}
