package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
	"github.com/nikoksr/notify"
)

// NewMonitorContext creates the dashboard state without starting the monitor routines.
func NewMonitorContext(notifier *notify.Notify, device DeviceAPI, mw MiddlewareSettings, registry *notices.Registry, intervals Intervals) *MonitorContext {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	mctx := MonitorContext{
		wg:                &wg,
		ctx:               ctx,
		monitorCancelFunc: cancel,
		device:            device,
		middleware:        mw,
		intervals:         intervals,
		Notices:           registry,
		sensors:           make(map[string]sensor.Sensor),
		order:             make([]string, 0),
		touched:           make(map[string]uint64),
		sparkline:         make([]int64, 0, SPARKLINE_SIZE),
		ready:             make(chan struct{}),
	}

	mctx.Notification.NotifyCh = make(chan NotificationTask, 16)
	mctx.Notification.notifier = notifier

	registry.OnNew(mctx.forwardNotice)

	return &mctx
}

// InitializeMonitorContext creates the dashboard state and starts polling the device.
func InitializeMonitorContext(notifier *notify.Notify, device DeviceAPI, mw MiddlewareSettings, registry *notices.Registry, intervals Intervals) *MonitorContext {
	slog.Debug(">>InitializeMonitorContext")
	defer slog.Debug("<<InitializeMonitorContext")

	mctx := NewMonitorContext(notifier, device, mw, registry, intervals)
	mctx.startMonitorRoutines()

	return mctx
}

// CancelAndWait for the monitor routines to exit.
func (mctx *MonitorContext) CancelAndWait() {
	mctx.monitorCancelFunc()
	mctx.wg.Wait()
}

func (mctx *MonitorContext) startMonitorRoutines() {
	mctx.wg.Add(1)
	go mctx.monitorNotifications()

	mctx.wg.Add(1)
	go mctx.monitorNotices()

	mctx.wg.Add(1)
	go mctx.monitorDevice()
}

// Ready is closed once the device answered its first status request.
func (mctx *MonitorContext) Ready() <-chan struct{} {
	return mctx.ready
}

func (mctx *MonitorContext) monitorDevice() {
	slog.Debug(">>monitorDevice")
	defer slog.Debug("<<monitorDevice")

	defer mctx.wg.Done()

	if !mctx.connectDevice() {
		return
	}

	mctx.refreshSensors(mctx.ctx)

	heartbeatTicker := time.NewTicker(mctx.intervals.Heartbeat)
	defer heartbeatTicker.Stop()

	sensorTicker := time.NewTicker(mctx.intervals.Sensors)
	defer sensorTicker.Stop()

	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorDevice: context done")
			return

		case <-heartbeatTicker.C:
			mctx.heartbeat(mctx.ctx, false)

		case <-sensorTicker.C:
			mctx.refreshSensors(mctx.ctx)
		}
	}
}

// connectDevice requests the initial status until the device answers. It returns false when
// the monitor was cancelled first.
func (mctx *MonitorContext) connectDevice() bool {
	for {
		if err := mctx.heartbeat(mctx.ctx, true); err == nil {
			mctx.readyOnce.Do(func() { close(mctx.ready) })
			return true
		}

		select {
		case <-mctx.ctx.Done():
			slog.Debug("connectDevice: context done")
			return false
		case <-time.After(CONNECT_RETRY):
		}
	}
}

func (mctx *MonitorContext) monitorNotices() {
	slog.Debug(">>monitorNotices")
	defer slog.Debug("<<monitorNotices")

	defer mctx.wg.Done()

	ticker := time.NewTicker(NOTICE_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorNotices: context done")
			return

		case <-ticker.C:
			if removed := mctx.Notices.Sweep(); removed > 0 {
				slog.Debug("expired notices", "count", removed)
			}
		}
	}
}

// forwardNotice queues error notices for delivery through the notifier.
func (mctx *MonitorContext) forwardNotice(n notices.Notice) {
	if n.Level != notices.LevelError {
		return
	}

	select {
	case mctx.Notification.NotifyCh <- NotificationTask{Title: n.Title, Message: n.Message}:
	case <-mctx.ctx.Done():
	default:
		slog.Warn("notification queue full, dropping", "title", n.Title)
	}
}

func (mctx *MonitorContext) monitorNotifications() {
	slog.Debug(">>monitorNotifications")
	defer slog.Debug("<<monitorNotifications")

	defer mctx.wg.Done()
	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorNotifications: context done")
			return

		case task, ok := <-mctx.Notification.NotifyCh:
			if !ok {
				slog.Error("The notification channel was closed")
				return
			}

			if mctx.Notification.notifier == nil {
				slog.Debug("no notifier registered", "title", task.Title)
				continue
			}

			err := mctx.Notification.notifier.Send(mctx.ctx, "VZero: "+task.Title, task.Message)
			if err != nil {
				slog.Error("failed to send message", "error", err, "message", task.Message)
			}
		}
	}
}
