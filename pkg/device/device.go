package device

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/config"
	"github.com/KyleBrandon/vzero-dashboard/internal/deviceapi"
	"github.com/KyleBrandon/vzero-dashboard/internal/probe"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func NewDevice(cfg config.DeviceConfig, p probe.Probe, bindings BindingStore) *Device {
	d := &Device{
		cfg:      cfg,
		probe:    p,
		bindings: bindings,
		uuids:    make(map[string]string),
		readings: make(map[string]*float64),
		settings: Settings{SSID: cfg.SSID, Middleware: cfg.Middleware},
		heap:     freeHeap,
		now:      time.Now,
	}

	if d.cfg.Serial == "" {
		d.cfg.Serial = hostSerial()
	}

	return d
}

// Start loads the persisted bindings, takes a first reading of every sensor and keeps polling
// the probe at the plugin interval.
func (d *Device) Start(ctx context.Context) error {
	slog.Debug(">>Device.Start")
	defer slog.Debug("<<Device.Start")

	uuids, err := d.bindings.Load(ctx)
	if err != nil {
		slog.Error("failed to load sensor bindings", "error", err)
		return err
	}

	d.Lock()
	d.uuids = uuids
	d.started = d.now()
	d.minHeap = d.heap()
	d.Unlock()

	d.poll()

	d.ctx, d.monitorCancelFunc = context.WithCancel(ctx)

	d.wg.Add(1)
	go d.pollProbe()

	return nil
}

func (d *Device) CancelAndWait() {
	if d.monitorCancelFunc != nil {
		d.monitorCancelFunc()
	}
	d.wg.Wait()
}

func (d *Device) pollProbe() {
	slog.Debug(">>pollProbe")
	defer slog.Debug("<<pollProbe")

	defer d.wg.Done()

	ticker := time.NewTicker(time.Duration(d.cfg.PluginIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.poll()
		}
	}
}

// poll reads every sensor. A failed read clears the cached value.
func (d *Device) poll() {
	readings := make(map[string]*float64)
	for _, p := range d.probe.Plugins() {
		for _, addr := range p.Addrs {
			v, err := d.probe.ReadValue(p.Name, addr)
			if err != nil {
				slog.Warn("failed to read sensor", "plugin", p.Name, "addr", addr, "error", err)
				readings[sensor.Key(p.Name, addr)] = nil
				continue
			}
			readings[sensor.Key(p.Name, addr)] = &v
		}
	}

	heap := d.heap()

	d.Lock()
	defer d.Unlock()

	d.readings = readings
	if heap < d.minHeap {
		d.minHeap = heap
	}
}

// Status reports the heartbeat. The minimum free heap restarts from the current value after
// each report.
func (d *Device) Status(initial bool) deviceapi.Status {
	d.Lock()
	defer d.Unlock()

	heap := d.heap()
	if heap < d.minHeap {
		d.minHeap = heap
	}

	status := deviceapi.Status{
		ResetCode: RESET_POWER_ON,
		Heap:      heap,
		MinHeap:   d.minHeap,
		Uptime:    d.now().Sub(d.started).Milliseconds(),
	}
	d.minHeap = heap

	if initial {
		status.Serial = d.cfg.Serial
		status.Build = d.cfg.Build
		status.SSID = d.settings.SSID
		status.Middleware = d.settings.Middleware
		status.IP = localIP()
		status.WifiMode = WIFI_MODE_AP
		if d.settings.SSID != "" {
			status.WifiMode = WIFI_MODE_STATION
		}
	}

	return status
}

func (d *Device) Plugins() []deviceapi.Plugin {
	d.Lock()
	defer d.Unlock()

	plugins := make([]deviceapi.Plugin, 0)
	for _, p := range d.probe.Plugins() {
		plugin := deviceapi.Plugin{
			Name:     p.Name,
			Settings: &deviceapi.PluginSettings{Interval: d.cfg.PluginIntervalSeconds},
			Sensors:  make([]deviceapi.SensorReading, 0, len(p.Addrs)),
		}
		for _, addr := range p.Addrs {
			plugin.Sensors = append(plugin.Sensors, d.reading(p.Name, addr))
		}
		plugins = append(plugins, plugin)
	}

	return plugins
}

// reading expects the lock to be held.
func (d *Device) reading(plugin, addr string) deviceapi.SensorReading {
	key := sensor.Key(plugin, addr)
	return deviceapi.SensorReading{
		Addr:  addr,
		Value: d.readings[key],
		UUID:  d.uuids[key],
		Hash:  probe.Hash(d.cfg.Serial, plugin, addr),
	}
}

func (d *Device) exists(plugin, addr string) bool {
	_, ok := d.readings[sensor.Key(plugin, addr)]
	return ok
}

func (d *Device) Value(plugin, addr string) (float64, error) {
	d.Lock()
	defer d.Unlock()

	if !d.exists(plugin, addr) {
		return 0, ErrUnknownSensor
	}

	v := d.readings[sensor.Key(plugin, addr)]
	if v == nil {
		return 0, ErrNoValue
	}

	return *v, nil
}

// SetUUID binds a sensor to a middleware channel, or clears the binding when uuid is empty. A
// bound sensor has to be cleared before it takes a new uuid.
func (d *Device) SetUUID(ctx context.Context, plugin, addr, uuid string) (deviceapi.SensorReading, error) {
	slog.Debug(">>SetUUID", "plugin", plugin, "addr", addr, "uuid", uuid)
	defer slog.Debug("<<SetUUID")

	d.Lock()
	defer d.Unlock()

	if !d.exists(plugin, addr) {
		return deviceapi.SensorReading{}, ErrUnknownSensor
	}

	if uuid != "" && len(uuid) != UUID_LENGTH {
		return deviceapi.SensorReading{}, ErrInvalidUUID
	}

	key := sensor.Key(plugin, addr)
	if d.uuids[key] != "" && uuid != "" {
		return deviceapi.SensorReading{}, ErrBound
	}

	var err error
	if uuid == "" {
		err = d.bindings.Delete(ctx, plugin, addr)
	} else {
		err = d.bindings.Save(ctx, plugin, addr, uuid)
	}
	if err != nil {
		slog.Error("failed to persist sensor binding", "plugin", plugin, "addr", addr, "error", err)
		return deviceapi.SensorReading{}, err
	}

	if uuid == "" {
		delete(d.uuids, key)
	} else {
		d.uuids[key] = uuid
	}

	return d.reading(plugin, addr), nil
}

// UpdateSettings applies new WiFi credentials when an ssid is given, and a new middleware when
// one is given.
func (d *Device) UpdateSettings(s Settings) error {
	if s.SSID == "" && s.Middleware == "" {
		return validation.NewError("validation_settings_required", "ssid or middleware is required")
	}

	if err := validation.Validate(s.Middleware, is.URL); err != nil {
		return fmt.Errorf("middleware: %w", err)
	}

	d.Lock()
	defer d.Unlock()

	if s.SSID != "" {
		d.settings.SSID = s.SSID
		d.settings.Pass = s.Pass
	}
	if s.Middleware != "" {
		d.settings.Middleware = s.Middleware
	}

	slog.Info("device settings updated", "ssid", d.settings.SSID, "middleware", d.settings.Middleware)

	return nil
}

func freeHeap() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.HeapIdle - ms.HeapReleased)
}

func hostSerial() string {
	host, err := os.Hostname()
	if err != nil {
		return "000000"
	}

	return probe.Hash(host, "", "")[:6]
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}

	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}

	return ""
}
