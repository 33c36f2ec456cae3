package plugins

import (
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/vzero-dashboard/internal/sensor"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
)

type (
	PluginResponse struct {
		sensor.PluginInfo
		Sensors []sensor.Sensor `json:"sensors"`
	}

	SensorLister interface {
		Sensors() []sensor.Sensor
	}

	Handler struct {
		sensors SensorLister
	}
)

func NewHandler(sensors SensorLister) *Handler {
	return &Handler{sensors}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/plugins", h.handlerPluginsGet)
}

// handlerPluginsGet groups the sensor cards by plugin, in the order the device reports them.
func (h *Handler) handlerPluginsGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerPluginsGet")

	results := make([]PluginResponse, 0)
	index := make(map[string]int)
	for _, s := range h.sensors.Sensors() {
		i, ok := index[s.Plugin]
		if !ok {
			i = len(results)
			index[s.Plugin] = i
			results = append(results, PluginResponse{PluginInfo: sensor.Plugin(s.Plugin), Sensors: make([]sensor.Sensor, 0)})
		}
		results[i].Sensors = append(results[i].Sensors, s)
	}

	utils.RespondWithJSON(w, http.StatusOK, results)
}
