package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/deviceapi"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
	"github.com/nikoksr/notify"
)

const (
	SPARKLINE_SIZE  = 50
	LOW_HEAP_BYTES  = 8192
	RESTART_UPTIME  = 30 * time.Second
	CONNECT_RETRY   = 200 * time.Millisecond
	NOTICE_INTERVAL = 2 * time.Second
)

// reset reasons reported by the device
const (
	RESET_DEFAULT = iota
	RESET_WDT
	RESET_EXCEPTION
	RESET_SOFT_WDT
	RESET_SOFT_RESTART
	RESET_DEEP_SLEEP_AWAKE
	RESET_EXT_SYS_RST
)

type (
	DeviceAPI interface {
		GetStatus(ctx context.Context, initial bool) (deviceapi.Status, error)
		GetPlugins(ctx context.Context) ([]deviceapi.Plugin, error)
	}

	MiddlewareSettings interface {
		BaseURL() string
		SetBaseURL(raw string)
		FrontendURL() string
	}

	Intervals struct {
		Heartbeat time.Duration
		Sensors   time.Duration
	}

	NotificationTask struct {
		Title   string
		Message string
	}

	// DeviceStatus is the last heartbeat of the device, formatted for display.
	DeviceStatus struct {
		Online     bool      `json:"online"`
		ResetCode  int       `json:"resetcode"`
		Heap       int64     `json:"heap"`
		MinHeap    int64     `json:"minheap,omitempty"`
		Flash      int64     `json:"flash"`
		Uptime     int64     `json:"uptime"`
		HeapText   string    `json:"heap_text"`
		FlashText  string    `json:"flash_text"`
		UptimeText string    `json:"uptime_text"`
		Serial     string    `json:"serial,omitempty"`
		Address    string    `json:"address,omitempty"`
		IP         string    `json:"ip,omitempty"`
		WifiMode   string    `json:"wifimode,omitempty"`
		Build      string    `json:"build,omitempty"`
		SSID       string    `json:"ssid,omitempty"`
		Middleware string    `json:"middleware,omitempty"`
		UpdatedAt  time.Time `json:"updated_at,omitempty"`
	}

	// MonitorContext owns the dashboard state: the sensor cards, the device status with its
	// heap history, and the notice registry.
	MonitorContext struct {
		sync.Mutex
		wg                *sync.WaitGroup
		ctx               context.Context
		monitorCancelFunc context.CancelFunc
		device            DeviceAPI
		middleware        MiddlewareSettings
		intervals         Intervals

		Notices *notices.Registry

		sensors   map[string]sensor.Sensor
		order     []string
		status    DeviceStatus
		sparkline []int64
		ready     chan struct{}
		readyOnce sync.Once

		// generation counts RefreshSensor calls; touched holds the generation of each card's
		// last RefreshSensor.
		generation uint64
		touched    map[string]uint64

		Notification struct {
			NotifyCh chan NotificationTask
			notifier *notify.Notify
		}
	}
)
