package sensors

import (
	"context"

	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

type (
	SensorResponse struct {
		Plugin      string   `json:"plugin"`
		Addr        string   `json:"addr"`
		Hash        string   `json:"hash"`
		Value       *float64 `json:"value"`
		Unit        string   `json:"unit"`
		Type        string   `json:"type"`
		UUID        string   `json:"uuid,omitempty"`
		Connected   bool     `json:"connected"`
		Busy        bool     `json:"busy"`
		MonitorLink string   `json:"monitor_link,omitempty"`
	}

	SensorState interface {
		Sensor(plugin, addr string) (sensor.Sensor, bool)
		Sensors() []sensor.Sensor
		MiddlewareURL() string
	}

	SensorWorkflow interface {
		Connect(ctx context.Context, s *sensor.Sensor) error
		Disconnect(ctx context.Context, s *sensor.Sensor, fullDelete bool) error
		Reconcile(ctx context.Context, s *sensor.Sensor) error
		Busy(plugin, addr string) bool
	}

	Handler struct {
		state    SensorState
		workflow SensorWorkflow
		apiKey   string
	}
)
