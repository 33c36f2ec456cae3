package deviceapi

import "errors"

// ErrRejected is returned when the device answers an update with an error payload.
var ErrRejected = errors.New("device rejected the request")

type (
	PluginSettings struct {
		Interval int `json:"interval,omitempty"`
	}

	SensorReading struct {
		Addr  string   `json:"addr"`
		Value *float64 `json:"value"`
		UUID  string   `json:"uuid,omitempty"`
		Hash  string   `json:"hash"`
	}

	Plugin struct {
		Name     string          `json:"name"`
		Settings *PluginSettings `json:"settings,omitempty"`
		Sensors  []SensorReading `json:"sensors"`
	}

	// Status is the device heartbeat. The identity fields are only reported on the initial
	// request.
	Status struct {
		ResetCode  int    `json:"resetcode"`
		Heap       int64  `json:"heap"`
		MinHeap    int64  `json:"minheap,omitempty"`
		Flash      int64  `json:"flash,omitempty"`
		Uptime     int64  `json:"uptime"`
		Serial     string `json:"serial,omitempty"`
		IP         string `json:"ip,omitempty"`
		WifiMode   string `json:"wifimode,omitempty"`
		Build      string `json:"build,omitempty"`
		SSID       string `json:"ssid,omitempty"`
		Pass       string `json:"pass,omitempty"`
		Middleware string `json:"middleware,omitempty"`
	}

	updateResponse struct {
		Error string `json:"error,omitempty"`
	}
)
