package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/deviceapi"
	"github.com/KyleBrandon/vzero-dashboard/internal/metrics"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
)

// heartbeat polls the device status and records it. initial also reads the device identity
// and picks up its middleware setting.
func (mctx *MonitorContext) heartbeat(ctx context.Context, initial bool) error {
	slog.Debug(">>heartbeat", "initial", initial)
	defer slog.Debug("<<heartbeat")

	status, err := mctx.device.GetStatus(ctx, initial)
	if err != nil {
		slog.Warn("failed to read device status", "error", err)
		metrics.DevicePollFailures.WithLabelValues("status").Inc()
		mctx.Notices.Notify(notices.LevelWarning, "No connection", "Could not update status from VZero.", false)

		mctx.Lock()
		mctx.status.Online = false
		mctx.Unlock()
		return err
	}

	mctx.analyzeStatus(status)
	metrics.DeviceFreeHeap.Set(float64(status.Heap))

	mctx.Lock()
	defer mctx.Unlock()

	s := &mctx.status
	s.Online = true
	s.ResetCode = status.ResetCode
	s.Heap = status.Heap
	s.MinHeap = status.MinHeap
	s.Flash = status.Flash
	s.Uptime = status.Uptime
	s.HeapText = FormatHeap(status.Heap, status.MinHeap)
	s.FlashText = FormatBytes(status.Flash)
	s.UptimeText = FormatUptime(status.Uptime)
	s.UpdatedAt = time.Now().UTC()

	if initial {
		s.Serial = status.Serial
		s.Address = DeviceAddress(status.Serial)
		s.IP = status.IP
		s.WifiMode = status.WifiMode
		s.Build = status.Build
		s.SSID = status.SSID
		s.Middleware = status.Middleware

		if status.Middleware != "" && mctx.middleware != nil {
			mctx.middleware.SetBaseURL(status.Middleware)
		}
	}

	mctx.sparkline = append(mctx.sparkline, status.Heap)
	if len(mctx.sparkline) > SPARKLINE_SIZE {
		mctx.sparkline = mctx.sparkline[len(mctx.sparkline)-SPARKLINE_SIZE:]
	}

	return nil
}

// analyzeStatus raises notices for unexpected restarts and low memory.
func (mctx *MonitorContext) analyzeStatus(status deviceapi.Status) {
	switch {
	case status.ResetCode == RESET_WDT || status.ResetCode == RESET_SOFT_WDT:
		mctx.Notices.Notify(notices.LevelError, "Unexpected restart", "The VZero has experienced an unexpected restart, triggered by the built-in watch dog timer.", false)
	case status.ResetCode == RESET_EXCEPTION:
		mctx.Notices.Notify(notices.LevelError, "Unexpected restart", "The VZero has experienced an unexpected restart, caused by an exception.", false)
	case status.ResetCode == RESET_SOFT_RESTART && status.Uptime < RESTART_UPTIME.Milliseconds():
		mctx.Notices.Notify(notices.LevelWarning, "Restart", "The VZero was restarted.", false)
	}

	if status.Heap < LOW_HEAP_BYTES {
		mctx.Notices.Notify(notices.LevelWarning, "Low memory", "Available memory has reached a critical limit. VZero might become unstable.", false)
	}
}

func (mctx *MonitorContext) Status() DeviceStatus {
	mctx.Lock()
	defer mctx.Unlock()

	return mctx.status
}

func (mctx *MonitorContext) Sparkline() []int64 {
	mctx.Lock()
	defer mctx.Unlock()

	data := make([]int64, len(mctx.sparkline))
	copy(data, mctx.sparkline)
	return data
}

func (mctx *MonitorContext) MiddlewareURL() string {
	if mctx.middleware == nil {
		return ""
	}
	return mctx.middleware.BaseURL()
}

func (mctx *MonitorContext) FrontendURL() string {
	if mctx.middleware == nil {
		return ""
	}
	return mctx.middleware.FrontendURL()
}
