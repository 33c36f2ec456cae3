package device

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/internal/deviceapi"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
	"github.com/KyleBrandon/vzero-dashboard/internal/transport"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
)

func TestGetSensor(t *testing.T) {
	d, _ := newTestDevice(t, NewMemoryBindings())
	h := NewHandler(d)

	t.Run("should answer the value", func(t *testing.T) {
		rr := utils.TestRequest(t, "GET", "/api/{plugin}/{addr}", "/api/1wire/"+testAddr, nil, withCORS(h.sensor))

		utils.TestExpectedStatus(t, rr, http.StatusOK)
		utils.TestExpectedMessage(t, rr, `{"value":21.5}`)

		if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("expected the CORS header")
		}
	})

	t.Run("should not find an unknown sensor", func(t *testing.T) {
		rr := utils.TestRequest(t, "GET", "/api/{plugin}/{addr}", "/api/1wire/28-unknown", nil, h.sensor)
		utils.TestExpectedStatus(t, rr, http.StatusNotFound)
	})

	t.Run("should reject unknown parameters", func(t *testing.T) {
		rr := utils.TestRequest(t, "GET", "/api/{plugin}/{addr}", "/api/1wire/"+testAddr+"?value=1", nil, h.sensor)

		utils.TestExpectedStatus(t, rr, http.StatusBadRequest)
		utils.TestExpectedMessage(t, rr, "{}")
	})
}

func TestPostSensor(t *testing.T) {
	d, _ := newTestDevice(t, NewMemoryBindings())
	h := NewHandler(d)

	rr := utils.TestRequest(t, "POST", "/api/{plugin}/{addr}", "/api/1wire/"+testAddr+"?uuid="+testUUID, nil, h.sensor)
	utils.TestExpectedStatus(t, rr, http.StatusOK)

	var reading deviceapi.SensorReading
	if err := json.NewDecoder(rr.Body).Decode(&reading); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if reading.UUID != testUUID || reading.Addr != testAddr {
		t.Errorf("unexpected reading %+v", reading)
	}

	rr = utils.TestRequest(t, "POST", "/api/{plugin}/{addr}", "/api/1wire/"+testAddr+"?uuid="+otherUUID, nil, h.sensor)
	utils.TestExpectedStatus(t, rr, http.StatusBadRequest)
	utils.TestExpectedMessage(t, rr, "{}")
}

func TestGetStatusHandler(t *testing.T) {
	d, _ := newTestDevice(t, NewMemoryBindings())
	h := NewHandler(d)

	rr := utils.TestRequest(t, "GET", "/api/status", "/api/status?initial=1", nil, h.getStatus)
	utils.TestExpectedStatus(t, rr, http.StatusOK)
	utils.TestExpectedMessage(t, rr, `"serial":"`+testSerial+`"`)

	rr = utils.TestRequest(t, "GET", "/api/status", "/api/status", nil, h.getStatus)
	if strings.Contains(rr.Body.String(), "serial") {
		t.Errorf("expected no identity, got %s", rr.Body.String())
	}
}

func TestPostSettings(t *testing.T) {
	d, _ := newTestDevice(t, NewMemoryBindings())
	h := NewHandler(d)

	post := func(form url.Values) *httptest.ResponseRecorder {
		return utils.TestRequestWithHeaders(t, "POST", "/settings", "/settings",
			map[string][]string{"Content-Type": {"application/x-www-form-urlencoded"}},
			strings.NewReader(form.Encode()), h.postSettings)
	}

	rr := post(url.Values{"ssid": {"home"}, "pass": {"secret"}})
	utils.TestExpectedStatus(t, rr, http.StatusOK)
	utils.TestExpectedMessage(t, rr, SETTINGS_SAVED)

	rr = post(url.Values{})
	utils.TestExpectedStatus(t, rr, http.StatusBadRequest)
}

// The dashboard client talks to the device API end to end.
func TestDeviceClient(t *testing.T) {
	d, _ := newTestDevice(t, NewMemoryBindings())

	mux := http.NewServeMux()
	NewHandler(d).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := deviceapi.NewClient(srv.URL, time.Second)
	ctx := context.Background()

	plugins, err := client.GetPlugins(ctx)
	if err != nil || len(plugins) != 5 {
		t.Fatalf("unexpected plugins %+v %v", plugins, err)
	}

	status, err := client.GetStatus(ctx, true)
	if err != nil || status.Serial != testSerial {
		t.Fatalf("unexpected status %+v %v", status, err)
	}

	if err := client.SetSensorUUID(ctx, sensor.PLUGIN_WIFI, "wlan", testUUID); err != nil {
		t.Fatalf("unexpected bind error: %v", err)
	}

	if err := client.SetSensorUUID(ctx, sensor.PLUGIN_WIFI, "wlan", otherUUID); !errors.Is(err, transport.ErrTransport) {
		t.Errorf("expected a rejected rebind, got %v", err)
	}

	if err := client.SetSensorUUID(ctx, sensor.PLUGIN_WIFI, "wlan", ""); err != nil {
		t.Errorf("unexpected clear error: %v", err)
	}
}
