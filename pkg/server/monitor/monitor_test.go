package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/deviceapi"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

type mockDevice struct {
	mu          sync.Mutex
	status      deviceapi.Status
	statusErr   error
	plugins     []deviceapi.Plugin
	pluginsErr  error
	initialSeen int
	failFirst   int
	onPlugins   func()
}

func (m *mockDevice) GetStatus(ctx context.Context, initial bool) (deviceapi.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if initial {
		m.initialSeen++
	}
	if m.failFirst > 0 {
		m.failFirst--
		return deviceapi.Status{}, errors.New("connection refused")
	}
	return m.status, m.statusErr
}

func (m *mockDevice) GetPlugins(ctx context.Context) ([]deviceapi.Plugin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.onPlugins != nil {
		m.onPlugins()
	}
	return m.plugins, m.pluginsErr
}

type mockMiddleware struct {
	base string
}

func (m *mockMiddleware) BaseURL() string { return m.base }
func (m *mockMiddleware) SetBaseURL(raw string) { m.base = raw }
func (m *mockMiddleware) FrontendURL() string { return m.base + "/frontend" }

func newTestMonitor(device *mockDevice) (*MonitorContext, *mockMiddleware) {
	mw := &mockMiddleware{base: "http://localhost:8888/vz/htdocs/middleware.php"}
	mctx := NewMonitorContext(nil, device, mw, notices.NewRegistry(time.Minute), Intervals{Heartbeat: time.Hour, Sensors: time.Hour})
	return mctx, mw
}

func hasNotice(mctx *MonitorContext, level notices.Level, title string) bool {
	for _, n := range mctx.Notices.List() {
		if n.Level == level && n.Title == title {
			return true
		}
	}
	return false
}

func TestHeartbeat(t *testing.T) {
	t.Run("should record the initial status and adopt the middleware", func(t *testing.T) {
		device := &mockDevice{status: deviceapi.Status{
			ResetCode:  0,
			Heap:       20480,
			MinHeap:    16384,
			Flash:      4194304,
			Uptime:     3723000,
			Serial:     "00a1b2",
			Middleware: "http://demo.volkszaehler.org/middleware.php",
		}}
		mctx, mw := newTestMonitor(device)

		if err := mctx.heartbeat(context.Background(), true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		s := mctx.Status()
		if !s.Online || s.Serial != "00a1b2" || s.Address != "http://vzero-00a1b2.local" {
			t.Errorf("unexpected status %+v", s)
		}

		if s.HeapText != "20kB (min 16kB)" || s.FlashText != "4096kB" || s.UptimeText != "01:02:03" {
			t.Errorf("unexpected formatting %q %q %q", s.HeapText, s.FlashText, s.UptimeText)
		}

		if mw.base != "http://demo.volkszaehler.org/middleware.php" {
			t.Errorf("expected the device middleware adopted, got %s", mw.base)
		}

		if mctx.Notices.Len() != 0 {
			t.Errorf("expected no notices, got %+v", mctx.Notices.List())
		}
	})

	t.Run("should report restarts and low memory", func(t *testing.T) {
		tests := []struct {
			name   string
			status deviceapi.Status
			level  notices.Level
			title  string
		}{
			{"watch dog", deviceapi.Status{ResetCode: RESET_WDT, Heap: 20000}, notices.LevelError, "Unexpected restart"},
			{"soft watch dog", deviceapi.Status{ResetCode: RESET_SOFT_WDT, Heap: 20000}, notices.LevelError, "Unexpected restart"},
			{"exception", deviceapi.Status{ResetCode: RESET_EXCEPTION, Heap: 20000}, notices.LevelError, "Unexpected restart"},
			{"restart", deviceapi.Status{ResetCode: RESET_SOFT_RESTART, Uptime: 5000, Heap: 20000}, notices.LevelWarning, "Restart"},
			{"low memory", deviceapi.Status{Heap: 4096}, notices.LevelWarning, "Low memory"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mctx, _ := newTestMonitor(&mockDevice{status: tt.status})
				mctx.heartbeat(context.Background(), false)

				if !hasNotice(mctx, tt.level, tt.title) {
					t.Errorf("expected %s notice %q, got %+v", tt.level, tt.title, mctx.Notices.List())
				}
			})
		}
	})

	t.Run("should not report an old restart", func(t *testing.T) {
		mctx, _ := newTestMonitor(&mockDevice{status: deviceapi.Status{ResetCode: RESET_SOFT_RESTART, Uptime: 60000, Heap: 20000}})
		mctx.heartbeat(context.Background(), false)

		if mctx.Notices.Len() != 0 {
			t.Errorf("expected no notices, got %+v", mctx.Notices.List())
		}
	})

	t.Run("should warn and go offline when the device does not answer", func(t *testing.T) {
		device := &mockDevice{status: deviceapi.Status{Heap: 20000}}
		mctx, _ := newTestMonitor(device)
		mctx.heartbeat(context.Background(), false)

		device.statusErr = errors.New("timeout")
		if err := mctx.heartbeat(context.Background(), false); err == nil {
			t.Fatal("expected an error")
		}

		if mctx.Status().Online {
			t.Error("expected the device offline")
		}

		if !hasNotice(mctx, notices.LevelWarning, "No connection") {
			t.Error("expected a no connection warning")
		}
	})

	t.Run("should keep the last heap samples", func(t *testing.T) {
		device := &mockDevice{}
		mctx, _ := newTestMonitor(device)

		for i := 0; i < SPARKLINE_SIZE+5; i++ {
			device.status = deviceapi.Status{Heap: int64(10000 + i)}
			mctx.heartbeat(context.Background(), false)
		}

		data := mctx.Sparkline()
		if len(data) != SPARKLINE_SIZE {
			t.Fatalf("expected %d samples, got %d", SPARKLINE_SIZE, len(data))
		}

		if data[0] != 10005 || data[SPARKLINE_SIZE-1] != int64(10000+SPARKLINE_SIZE+4) {
			t.Errorf("unexpected samples %d..%d", data[0], data[SPARKLINE_SIZE-1])
		}
	})
}

func TestRefreshSensors(t *testing.T) {
	value := 21.5
	device := &mockDevice{plugins: []deviceapi.Plugin{
		{Name: "1wire", Sensors: []deviceapi.SensorReading{{Addr: "28-17B6", Value: &value, Hash: "abc"}}},
		{Name: "dht", Sensors: []deviceapi.SensorReading{{Addr: "temp", Hash: "d1", UUID: "X"}, {Addr: "humidity", Hash: "d2"}}},
	}}
	mctx, _ := newTestMonitor(device)

	if err := mctx.refreshSensors(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sensors := mctx.Sensors()
	if len(sensors) != 3 || sensors[0].Addr != "28-17B6" || sensors[2].Unit != "%" {
		t.Errorf("unexpected sensors %+v", sensors)
	}

	t.Run("should replace a single card", func(t *testing.T) {
		s, ok := mctx.Sensor("1wire", "28-17B6")
		if !ok {
			t.Fatal("expected the sensor")
		}

		s.UUID = "Y"
		mctx.RefreshSensor(s)

		if got, _ := mctx.Sensor("1wire", "28-17B6"); got.UUID != "Y" {
			t.Errorf("expected uuid Y, got %q", got.UUID)
		}

		if len(mctx.Sensors()) != 3 {
			t.Error("expected no new card")
		}
	})

	t.Run("should keep the cards when the device does not answer", func(t *testing.T) {
		device.pluginsErr = errors.New("timeout")

		if err := mctx.refreshSensors(context.Background()); err == nil {
			t.Fatal("expected an error")
		}

		if len(mctx.Sensors()) != 3 {
			t.Error("expected the cards kept")
		}

		if !hasNotice(mctx, notices.LevelWarning, "No connection") {
			t.Error("expected a no connection warning")
		}
	})
}

func TestRefreshSensorsDuringBind(t *testing.T) {
	value := 21.5
	device := &mockDevice{plugins: []deviceapi.Plugin{
		{Name: "1wire", Sensors: []deviceapi.SensorReading{{Addr: "28-17B6", Value: &value, Hash: "abc"}}},
	}}
	mctx, _ := newTestMonitor(device)

	if err := mctx.refreshSensors(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("should keep a uuid bound while the poll was in flight", func(t *testing.T) {
		device.onPlugins = func() {
			s, _ := mctx.Sensor("1wire", "28-17B6")
			s.UUID = "X"
			mctx.RefreshSensor(s)
		}

		if err := mctx.refreshSensors(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, _ := mctx.Sensor("1wire", "28-17B6")
		if got.UUID != "X" {
			t.Errorf("expected uuid X to survive the poll, got %q", got.UUID)
		}

		if got.Value == nil || *got.Value != 21.5 {
			t.Errorf("expected the polled value, got %v", got.Value)
		}
	})

	t.Run("should take the device uuid on the next poll", func(t *testing.T) {
		device.onPlugins = nil

		if err := mctx.refreshSensors(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got, _ := mctx.Sensor("1wire", "28-17B6"); got.UUID != "" {
			t.Errorf("expected the device uuid, got %q", got.UUID)
		}
	})
}

func TestForwardNotice(t *testing.T) {
	mctx, _ := newTestMonitor(&mockDevice{})

	mctx.Notices.Notify(notices.LevelWarning, "Low memory", "low", false)
	mctx.Notices.Notify(notices.LevelError, "Middleware error", "Could not connect to middleware.", false)

	select {
	case task := <-mctx.Notification.NotifyCh:
		if task.Title != "Middleware error" {
			t.Errorf("unexpected task %+v", task)
		}
	default:
		t.Fatal("expected the error notice queued")
	}

	select {
	case task := <-mctx.Notification.NotifyCh:
		t.Errorf("expected only error notices forwarded, got %+v", task)
	default:
	}
}

func TestMonitorRoutines(t *testing.T) {
	value := 1.0
	device := &mockDevice{
		failFirst: 2,
		status:    deviceapi.Status{Heap: 20000, Serial: "00a1b2"},
		plugins:   []deviceapi.Plugin{{Name: sensor.PLUGIN_GPIO, Sensors: []deviceapi.SensorReading{{Addr: "17", Value: &value, Hash: "g"}}}},
	}
	mw := &mockMiddleware{}
	mctx := InitializeMonitorContext(nil, device, mw, notices.NewRegistry(time.Minute), Intervals{Heartbeat: 10 * time.Millisecond, Sensors: 10 * time.Millisecond})

	select {
	case <-mctx.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("monitor never connected")
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(mctx.Sensors()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	mctx.CancelAndWait()

	if device.initialSeen != 3 {
		t.Errorf("expected 3 initial status requests, got %d", device.initialSeen)
	}

	if len(mctx.Sensors()) != 1 {
		t.Errorf("expected 1 sensor, got %d", len(mctx.Sensors()))
	}

	if mctx.Status().Serial != "00a1b2" {
		t.Errorf("unexpected status %+v", mctx.Status())
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		got      string
		expected string
	}{
		{FormatBytes(512), "512"},
		{FormatBytes(1024), "1024"},
		{FormatBytes(1536), "2kB"},
		{FormatHeap(20480, 0), "20kB"},
		{FormatUptime(0), "00:00:00"},
		{FormatUptime(90061000), "01:01:01"},
		{DeviceAddress(""), ""},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, tt.got)
		}
	}
}
