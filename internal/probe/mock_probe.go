package probe

import (
	"log/slog"
	"strconv"

	"github.com/KyleBrandon/vzero-dashboard/config"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

func NewMockProbe(cfg config.DeviceConfig) *MockProbe {
	slog.Debug(">>NewMockProbe")
	defer slog.Debug("<<NewMockProbe")

	m := &MockProbe{
		values:  make(map[string]float64),
		plugins: make([]PluginInfo, 0),
	}

	add := func(plugin string, readings map[string]float64, order ...string) {
		if !enabled(cfg, plugin) {
			return
		}
		for addr, v := range readings {
			m.values[sensor.Key(plugin, addr)] = v
		}
		m.plugins = append(m.plugins, PluginInfo{Name: plugin, Addrs: order})
	}

	add(sensor.PLUGIN_ONEWIRE, map[string]float64{"28-0000017B6a2f": 21.5}, "28-0000017B6a2f")
	add(sensor.PLUGIN_ANALOG, map[string]float64{ANALOG_ADDR: 0.42}, ANALOG_ADDR)

	pins := cfg.GPIOPins
	if len(pins) == 0 {
		pins = []int{17}
	}
	gpio := make(map[string]float64)
	addrs := make([]string, 0, len(pins))
	for _, n := range pins {
		gpio[strconv.Itoa(n)] = 0
		addrs = append(addrs, strconv.Itoa(n))
	}
	add(sensor.PLUGIN_GPIO, gpio, addrs...)

	add(sensor.PLUGIN_WIFI, map[string]float64{WIFI_ADDR: -56}, WIFI_ADDR)
	add(sensor.PLUGIN_DHT, map[string]float64{sensor.DHT_ADDR_TEMPERATURE: 22.1, "humidity": 48}, sensor.DHT_ADDR_TEMPERATURE, "humidity")

	return m
}

func (m *MockProbe) Plugins() []PluginInfo {
	return m.plugins
}

// ReadValue returns the fixed reading. GPIO counters advance by one pulse per read.
func (m *MockProbe) ReadValue(plugin, addr string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sensor.Key(plugin, addr)
	v, ok := m.values[key]
	if !ok {
		return 0, ErrUnknownSensor
	}

	if plugin == sensor.PLUGIN_GPIO {
		m.values[key] = v + 1
	}

	return v, nil
}

// SetValue overrides a reading.
func (m *MockProbe) SetValue(plugin, addr string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[sensor.Key(plugin, addr)] = value
}

func (m *MockProbe) Close() error {
	return nil
}
