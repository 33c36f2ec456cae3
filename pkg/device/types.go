package device

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/config"
	"github.com/KyleBrandon/vzero-dashboard/internal/probe"
)

const (
	UUID_LENGTH       = 36
	WIFI_MODE_STATION = "Connected"
	WIFI_MODE_AP      = "Access Point"
	RESET_POWER_ON    = 0
	CORS_ALLOW_ORIGIN = "*"
	SETTINGS_SAVED    = "Settings saved."
	SETTINGS_REJECTED = "Bad request"
)

var (
	ErrUnknownSensor = errors.New("unknown sensor")
	ErrInvalidUUID   = errors.New("uuid must be empty or 36 characters")
	ErrBound         = errors.New("sensor must be cleared before it can be bound again")
	ErrNoValue       = errors.New("sensor has no value")
)

type (
	// BindingStore persists the middleware channel uuid of each sensor.
	BindingStore interface {
		Load(ctx context.Context) (map[string]string, error)
		Save(ctx context.Context, plugin, addr, uuid string) error
		Delete(ctx context.Context, plugin, addr string) error
	}

	Settings struct {
		SSID       string
		Pass       string
		Middleware string
	}

	Device struct {
		sync.Mutex
		wg                sync.WaitGroup
		ctx               context.Context
		monitorCancelFunc context.CancelFunc

		cfg      config.DeviceConfig
		probe    probe.Probe
		bindings BindingStore
		uuids    map[string]string
		readings map[string]*float64
		settings Settings
		started  time.Time
		minHeap  int64
		heap     func() int64
		now      func() time.Time
	}
)
