package probe

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/config"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
	"github.com/stianeikeland/go-rpio/v4"
	"github.com/yryz/ds18b20"
)

// NewHardwareProbe reads 1-Wire temperature sensors, counts pulses on GPIO pins and reports the
// WiFi signal level. Analog and DHT sensors are not available on this hardware.
func NewHardwareProbe(cfg config.DeviceConfig) (*HardwareProbe, error) {
	slog.Debug(">>NewHardwareProbe")
	defer slog.Debug("<<NewHardwareProbe")

	p := &HardwareProbe{
		plugins:       make([]PluginInfo, 0),
		wifiInterface: cfg.WifiInterface,
		wirelessFile:  PROC_NET_WIRELESS,
		counters:      make(map[string]*pulseCounter),
		stop:          make(chan struct{}),
	}

	if cfg.OneWire && enabled(cfg, sensor.PLUGIN_ONEWIRE) {
		addrs, err := ds18b20.Sensors()
		if err != nil {
			slog.Error("failed to enumerate 1-Wire sensors", "error", err)
		} else {
			p.plugins = append(p.plugins, PluginInfo{Name: sensor.PLUGIN_ONEWIRE, Addrs: addrs})
		}
	}

	if len(cfg.GPIOPins) > 0 && enabled(cfg, sensor.PLUGIN_GPIO) {
		if err := p.startPulseCounters(cfg.GPIOPins); err != nil {
			return nil, err
		}
	}

	if enabled(cfg, sensor.PLUGIN_WIFI) {
		p.plugins = append(p.plugins, PluginInfo{Name: sensor.PLUGIN_WIFI, Addrs: []string{WIFI_ADDR}})
	}

	for _, name := range []string{sensor.PLUGIN_ANALOG, sensor.PLUGIN_DHT} {
		if len(cfg.Plugins) > 0 && enabled(cfg, name) {
			slog.Warn("plugin not supported by the hardware probe", "plugin", name)
		}
	}

	return p, nil
}

func (p *HardwareProbe) startPulseCounters(pins []int) error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("open gpio: %w", err)
	}

	addrs := make([]string, 0, len(pins))
	for _, n := range pins {
		pin := rpio.Pin(n)
		pin.Input()
		pin.PullUp()
		pin.Detect(rpio.FallEdge)

		addr := strconv.Itoa(n)
		counter := &pulseCounter{pin: n}
		p.counters[addr] = counter
		addrs = append(addrs, addr)

		p.wg.Add(1)
		go p.countPulses(pin, counter)
	}

	p.plugins = append(p.plugins, PluginInfo{Name: sensor.PLUGIN_GPIO, Addrs: addrs})

	return nil
}

// countPulses polls the edge flag of a pin. At most one pulse is counted per poll, which bounds
// the counter to MAX_PULSE_RATE.
func (p *HardwareProbe) countPulses(pin rpio.Pin, counter *pulseCounter) {
	slog.Debug(">>countPulses", "pin", counter.pin)
	defer slog.Debug("<<countPulses", "pin", counter.pin)

	defer p.wg.Done()
	defer pin.Detect(rpio.NoEdge)

	ticker := time.NewTicker(EDGE_POLL_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return

		case <-ticker.C:
			if pin.EdgeDetected() {
				counter.count.Add(1)
			}
		}
	}
}

func (p *HardwareProbe) Plugins() []PluginInfo {
	return p.plugins
}

func (p *HardwareProbe) ReadValue(plugin, addr string) (float64, error) {
	switch plugin {
	case sensor.PLUGIN_ONEWIRE:
		t, err := ds18b20.Temperature(addr)
		if err != nil {
			slog.Error("failed to read sensor", "plugin", plugin, "addr", addr, "error", err)
			return 0, err
		}
		return t, nil

	case sensor.PLUGIN_GPIO:
		counter, ok := p.counters[addr]
		if !ok {
			return 0, ErrUnknownSensor
		}
		return float64(counter.count.Load()), nil

	case sensor.PLUGIN_WIFI:
		if addr != WIFI_ADDR {
			return 0, ErrUnknownSensor
		}
		return p.readSignalLevel()
	}

	return 0, ErrUnknownSensor
}

func (p *HardwareProbe) readSignalLevel() (float64, error) {
	f, err := os.Open(p.wirelessFile)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return parseSignalLevel(f, p.wifiInterface)
}

// parseSignalLevel reads the signal level in dBm of an interface from /proc/net/wireless.
func parseSignalLevel(r io.Reader, iface string) (float64, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name, rest, found := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !found || name != iface {
			continue
		}

		// status, link quality, signal level, noise level, ...
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return 0, fmt.Errorf("malformed wireless entry for %s", iface)
		}

		return strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
	}

	if err := scanner.Err(); err != nil {
		return 0, err
	}

	return 0, ErrNoReading
}

func (p *HardwareProbe) Close() error {
	close(p.stop)
	p.wg.Wait()

	if len(p.counters) > 0 {
		return rpio.Close()
	}

	return nil
}
