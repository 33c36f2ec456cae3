package monitor

import (
	"context"
	"log/slog"

	"github.com/KyleBrandon/vzero-dashboard/internal/metrics"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

// refreshSensors reloads the sensor cards from the device plugins. A card replaced through
// RefreshSensor while the poll was in flight keeps its uuid, since the poll may predate the
// bind or unbind.
func (mctx *MonitorContext) refreshSensors(ctx context.Context) error {
	slog.Debug(">>refreshSensors")
	defer slog.Debug("<<refreshSensors")

	mctx.Lock()
	start := mctx.generation
	mctx.Unlock()

	plugins, err := mctx.device.GetPlugins(ctx)
	if err != nil {
		slog.Warn("failed to read device plugins", "error", err)
		metrics.DevicePollFailures.WithLabelValues("plugins").Inc()
		mctx.Notices.Notify(notices.LevelWarning, "No connection", "Could not update sensors from VZero.", false)
		return err
	}

	sensors := make(map[string]sensor.Sensor)
	order := make([]string, 0)
	for _, p := range plugins {
		for _, r := range p.Sensors {
			s := sensor.New(p.Name, r.Addr, r.Hash, r.Value, r.UUID)
			if _, ok := sensors[s.Key()]; !ok {
				order = append(order, s.Key())
			}
			sensors[s.Key()] = s
		}
	}

	mctx.Lock()
	for key, s := range sensors {
		if mctx.touched[key] > start {
			s.UUID = mctx.sensors[key].UUID
			sensors[key] = s
		}
	}
	mctx.sensors = sensors
	mctx.order = order
	mctx.Unlock()

	return nil
}

// RefreshSensor replaces the card of a single sensor.
func (mctx *MonitorContext) RefreshSensor(s sensor.Sensor) {
	mctx.Lock()
	defer mctx.Unlock()

	if _, ok := mctx.sensors[s.Key()]; !ok {
		mctx.order = append(mctx.order, s.Key())
	}
	mctx.sensors[s.Key()] = s

	mctx.generation++
	mctx.touched[s.Key()] = mctx.generation
}

func (mctx *MonitorContext) Sensor(plugin, addr string) (sensor.Sensor, bool) {
	mctx.Lock()
	defer mctx.Unlock()

	s, ok := mctx.sensors[sensor.Key(plugin, addr)]
	return s, ok
}

// Sensors returns the sensor cards in device order.
func (mctx *MonitorContext) Sensors() []sensor.Sensor {
	mctx.Lock()
	defer mctx.Unlock()

	sensors := make([]sensor.Sensor, 0, len(mctx.order))
	for _, key := range mctx.order {
		sensors = append(sensors, mctx.sensors[key])
	}

	return sensors
}
