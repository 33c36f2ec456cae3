package sensors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/vzero-dashboard/internal/auth"
	"github.com/KyleBrandon/vzero-dashboard/internal/middleware"
	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
	"github.com/KyleBrandon/vzero-dashboard/internal/workflow"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
)

func NewHandler(state SensorState, wf SensorWorkflow, apiKey string) *Handler {
	return &Handler{
		state,
		wf,
		apiKey,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/sensors", h.handlerSensorsGet)
	mux.HandleFunc("GET /v1/sensors/{plugin}/{addr}", h.handlerSensorGet)
	mux.HandleFunc("POST /v1/sensors/{plugin}/{addr}/connect", auth.RequireApiKey(h.apiKey, h.handlerSensorConnect))
	mux.HandleFunc("POST /v1/sensors/{plugin}/{addr}/disconnect", auth.RequireApiKey(h.apiKey, h.handlerSensorDisconnect))
	mux.HandleFunc("POST /v1/sensors/{plugin}/{addr}/reconcile", auth.RequireApiKey(h.apiKey, h.handlerSensorReconcile))
	mux.HandleFunc("GET /v1/sensors/{plugin}/{addr}/monitor", h.handlerSensorMonitor)
	mux.HandleFunc("GET /v1/frontend", h.handlerFrontend)
}

func (h *Handler) toResponse(s sensor.Sensor) SensorResponse {
	r := SensorResponse{
		Plugin:    s.Plugin,
		Addr:      s.Addr,
		Hash:      s.Hash,
		Value:     s.Value,
		Unit:      s.Unit,
		Type:      s.ChannelType(),
		UUID:      s.UUID,
		Connected: s.Connected(),
		Busy:      h.workflow.Busy(s.Plugin, s.Addr),
	}

	if s.Connected() {
		r.MonitorLink = middleware.MonitorURL(h.state.MiddlewareURL(), s.UUID)
	}

	return r
}

func (h *Handler) handlerSensorsGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerSensorsGet")
	defer slog.Debug("<<handlerSensorsGet")

	sensors := h.state.Sensors()
	results := make([]SensorResponse, 0, len(sensors))
	for _, s := range sensors {
		results = append(results, h.toResponse(s))
	}

	utils.RespondWithJSON(w, http.StatusOK, results)
}

func (h *Handler) lookupSensor(w http.ResponseWriter, r *http.Request) (sensor.Sensor, bool) {
	plugin := r.PathValue("plugin")
	addr := r.PathValue("addr")

	s, ok := h.state.Sensor(plugin, addr)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Sensor not found", errors.New(sensor.Key(plugin, addr)))
		return sensor.Sensor{}, false
	}

	return s, true
}

func (h *Handler) handlerSensorGet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSensor(w, r)
	if !ok {
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, h.toResponse(s))
}

func (h *Handler) handlerSensorConnect(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerSensorConnect")
	defer slog.Debug("<<handlerSensorConnect")

	h.runOperation(w, r, func(ctx context.Context, s *sensor.Sensor) error {
		return h.workflow.Connect(ctx, s)
	})
}

func (h *Handler) handlerSensorDisconnect(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerSensorDisconnect")
	defer slog.Debug("<<handlerSensorDisconnect")

	fullDelete := r.URL.Query().Get("delete") == "true"

	h.runOperation(w, r, func(ctx context.Context, s *sensor.Sensor) error {
		return h.workflow.Disconnect(ctx, s, fullDelete)
	})
}

func (h *Handler) handlerSensorReconcile(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerSensorReconcile")
	defer slog.Debug("<<handlerSensorReconcile")

	h.runOperation(w, r, func(ctx context.Context, s *sensor.Sensor) error {
		return h.workflow.Reconcile(ctx, s)
	})
}

// runOperation applies a workflow operation to a copy of the sensor card and answers with the
// resulting sensor. Once issued the operation runs to completion even if the client goes away;
// each device and middleware call is still bounded by its client timeout.
func (h *Handler) runOperation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, s *sensor.Sensor) error) {
	s, ok := h.lookupSensor(w, r)
	if !ok {
		return
	}

	ctx := context.WithoutCancel(r.Context())
	if err := op(ctx, &s); err != nil {
		code, message := errorStatus(err)
		utils.RespondWithError(w, code, message, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, h.toResponse(s))
}

func errorStatus(err error) (int, string) {
	var inconsistency *workflow.InconsistencyError
	var exception *middleware.ExceptionError

	switch {
	case errors.Is(err, workflow.ErrSensorBusy):
		return http.StatusConflict, "Sensor operation already in progress"
	case errors.Is(err, workflow.ErrAlreadyConnected):
		return http.StatusConflict, "Sensor is already connected"
	case errors.Is(err, workflow.ErrNotConnected):
		return http.StatusConflict, "Sensor is not connected"
	case errors.Is(err, workflow.ErrNothingToReconcile):
		return http.StatusUnprocessableEntity, "Nothing to reconcile"
	case errors.As(err, &inconsistency):
		return http.StatusBadGateway, "Device and middleware are out of sync"
	case errors.As(err, &exception):
		return http.StatusBadGateway, "Middleware says: " + exception.Message
	default:
		return http.StatusBadGateway, "Upstream request failed"
	}
}

func (h *Handler) handlerSensorMonitor(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSensor(w, r)
	if !ok {
		return
	}

	if !s.Connected() {
		utils.RespondWithError(w, http.StatusConflict, "Sensor is not connected", workflow.ErrNotConnected)
		return
	}

	http.Redirect(w, r, middleware.MonitorURL(h.state.MiddlewareURL(), s.UUID), http.StatusFound)
}

// handlerFrontend redirects to the frontend showing every connected sensor.
func (h *Handler) handlerFrontend(w http.ResponseWriter, r *http.Request) {
	uuids := make([]string, 0)
	for _, s := range h.state.Sensors() {
		if s.Connected() {
			uuids = append(uuids, s.UUID)
		}
	}

	http.Redirect(w, r, middleware.MonitorURL(h.state.MiddlewareURL(), uuids...), http.StatusFound)
}
