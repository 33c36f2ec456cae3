package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/deviceapi"
	"github.com/KyleBrandon/vzero-dashboard/internal/middleware"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/pkg/server/monitor"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

type mockDevice struct{}

func (mockDevice) GetStatus(ctx context.Context, initial bool) (deviceapi.Status, error) {
	return deviceapi.Status{Heap: 20480, Uptime: 1000, Serial: "00a1b2", Middleware: middleware.DemoBaseURL}, nil
}

func (mockDevice) GetPlugins(ctx context.Context) ([]deviceapi.Plugin, error) {
	return []deviceapi.Plugin{
		{Name: "1wire", Sensors: []deviceapi.SensorReading{{Addr: "28-17B6", Hash: "abc", UUID: "X"}, {Addr: "28-0001", Hash: "def"}}},
	}, nil
}

func newTestMonitor(t *testing.T) *monitor.MonitorContext {
	t.Helper()

	mw := middleware.NewClient("", time.Second)
	mctx := monitor.InitializeMonitorContext(nil, mockDevice{}, mw, notices.NewRegistry(time.Minute), monitor.Intervals{Heartbeat: time.Hour, Sensors: time.Hour})
	t.Cleanup(mctx.CancelAndWait)

	select {
	case <-mctx.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("monitor never connected")
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(mctx.Sensors()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	return mctx
}

func TestGetStatus(t *testing.T) {
	handler := NewHandler(newTestMonitor(t), nil)

	rr := utils.TestRequest(t, http.MethodGet, "/v1/status", "/v1/status", nil, handler.handleStatusGet)
	utils.TestExpectedStatus(t, rr, http.StatusOK)

	var status SystemStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}

	if status.Device.Serial != "00a1b2" || status.Device.HeapText != "20kB" {
		t.Errorf("unexpected device %+v", status.Device)
	}

	if status.Middleware != middleware.DemoBaseURL || status.Frontend != "http://demo.volkszaehler.org/frontend" {
		t.Errorf("unexpected middleware %s %s", status.Middleware, status.Frontend)
	}

	if status.SensorCount != 2 || status.ConnectedCount != 1 {
		t.Errorf("unexpected counts %d %d", status.SensorCount, status.ConnectedCount)
	}

	if len(status.Sparkline) != 1 {
		t.Errorf("expected one heap sample, got %v", status.Sparkline)
	}
}

func TestStatusWS(t *testing.T) {
	handler := NewHandler(newTestMonitor(t), nil)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/status/ws", nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer c.Close(websocket.StatusNormalClosure, "")

	var status SystemStatus
	if err := wsjson.Read(ctx, c, &status); err != nil {
		t.Fatalf("failed to read status: %v", err)
	}

	if status.Device.Serial != "00a1b2" {
		t.Errorf("unexpected device %+v", status.Device)
	}
}
