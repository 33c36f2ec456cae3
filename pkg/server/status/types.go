package status

import (
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/pkg/server/monitor"
)

type (
	SystemStatus struct {
		Device         monitor.DeviceStatus `json:"device"`
		Sparkline      []int64              `json:"sparkline"`
		Middleware     string               `json:"middleware"`
		Frontend       string               `json:"frontend"`
		SensorCount    int                  `json:"sensor_count"`
		ConnectedCount int                  `json:"connected_count"`
		Notices        []notices.Notice     `json:"notices"`
	}

	Handler struct {
		mctx           *monitor.MonitorContext
		originPatterns []string
	}
)
