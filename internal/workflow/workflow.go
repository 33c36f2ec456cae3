package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KyleBrandon/vzero-dashboard/internal/journal"
	"github.com/KyleBrandon/vzero-dashboard/internal/metrics"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
)

// Workflow connects sensors to middleware channels. Operations on one sensor never overlap.
type Workflow struct {
	device    DeviceBinder
	channels  ChannelService
	notifier  Notifier
	presenter Presenter
	journal   Journal

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New creates a workflow. presenter and journal are optional.
func New(device DeviceBinder, channels ChannelService, notifier Notifier, presenter Presenter, journal Journal) *Workflow {
	return &Workflow{
		device:    device,
		channels:  channels,
		notifier:  notifier,
		presenter: presenter,
		journal:   journal,
		inFlight:  make(map[string]struct{}),
	}
}

// acquire marks the sensor busy. The returned func releases it.
func (w *Workflow) acquire(s *sensor.Sensor, operation string) (func(), error) {
	key := s.Key()

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, busy := w.inFlight[key]; busy {
		slog.Warn("sensor busy", "sensor", key, "operation", operation)
		w.notifier.Notify(notices.LevelWarning, "Sensor busy", "An operation on sensor "+s.Addr+" is already in progress.", false)
		metrics.WorkflowOperations.WithLabelValues(operation, "busy").Inc()
		return nil, ErrSensorBusy
	}

	w.inFlight[key] = struct{}{}

	return func() {
		w.mu.Lock()
		delete(w.inFlight, key)
		w.mu.Unlock()
	}, nil
}

// Busy reports whether an operation on the sensor is running.
func (w *Workflow) Busy(plugin, addr string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, busy := w.inFlight[sensor.Key(plugin, addr)]
	return busy
}

func (w *Workflow) refresh(s *sensor.Sensor) {
	if w.presenter != nil {
		w.presenter.RefreshSensor(*s)
	}
}

func (w *Workflow) record(ctx context.Context, outcome journal.Outcome, s *sensor.Sensor, channelUUID, message string) {
	if w.journal == nil {
		return
	}

	entry := journal.Entry{
		Outcome:     outcome,
		Plugin:      s.Plugin,
		Addr:        s.Addr,
		Hash:        s.Hash,
		ChannelUUID: channelUUID,
		Message:     message,
	}

	// the journal outlives the request that produced the outcome
	if _, err := w.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		slog.Error("failed to record journal entry", "outcome", outcome, "sensor", s.Key(), "error", err)
	}
}

func observe(operation, outcome string) {
	metrics.WorkflowOperations.WithLabelValues(operation, outcome).Inc()
}
