package probe

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const (
	WIFI_ADDR          = "wlan"
	ANALOG_ADDR        = "a0"
	PROC_NET_WIRELESS  = "/proc/net/wireless"
	EDGE_POLL_INTERVAL = 5 * time.Millisecond
)

// MAX_PULSE_RATE is the highest pulse frequency in Hz a GPIO counter resolves. The edge flag is
// read once per EDGE_POLL_INTERVAL, so faster pulses are counted once per interval.
const MAX_PULSE_RATE = int(time.Second / EDGE_POLL_INTERVAL)

var (
	ErrUnknownSensor = errors.New("unknown sensor")
	ErrNoReading     = errors.New("no reading available")
)

type (
	PluginInfo struct {
		Name  string
		Addrs []string
	}

	// Probe reads the sensors attached to the device.
	Probe interface {
		Plugins() []PluginInfo
		ReadValue(plugin, addr string) (float64, error)
		Close() error
	}

	pulseCounter struct {
		pin   int
		count atomic.Int64
	}

	HardwareProbe struct {
		plugins       []PluginInfo
		wifiInterface string
		wirelessFile  string
		counters      map[string]*pulseCounter
		stop          chan struct{}
		wg            sync.WaitGroup
	}

	MockProbe struct {
		mu      sync.Mutex
		values  map[string]float64
		plugins []PluginInfo
	}
)
