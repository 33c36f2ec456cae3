package device

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
)

type Handler struct {
	device *Device
}

func NewHandler(device *Device) *Handler {
	return &Handler{device: device}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", withCORS(h.getStatus))
	mux.HandleFunc("GET /api/plugins", withCORS(h.getPlugins))
	mux.HandleFunc("GET /api/{plugin}/{addr}", withCORS(h.sensor))
	mux.HandleFunc("POST /api/{plugin}/{addr}", withCORS(h.sensor))
	mux.HandleFunc("POST /settings", h.postSettings)
}

func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", CORS_ALLOW_ORIGIN)
		next(w, r)
	}
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>getStatus")
	defer slog.Debug("<<getStatus")

	initial := r.URL.Query().Has("initial")
	utils.RespondWithJSON(w, http.StatusOK, h.device.Status(initial))
}

func (h *Handler) getPlugins(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>getPlugins")
	defer slog.Debug("<<getPlugins")

	utils.RespondWithJSON(w, http.StatusOK, h.device.Plugins())
}

// sensor answers the value of a sensor, or updates its binding when the only parameter is uuid.
func (h *Handler) sensor(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>sensor")
	defer slog.Debug("<<sensor")

	plugin := r.PathValue("plugin")
	addr := r.PathValue("addr")

	if err := r.ParseForm(); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, struct{}{})
		return
	}

	if len(r.Form) == 0 && r.Method == http.MethodGet {
		v, err := h.device.Value(plugin, addr)
		switch {
		case errors.Is(err, ErrUnknownSensor):
			utils.RespondWithError(w, http.StatusNotFound, "sensor not found", err)
		case err != nil:
			utils.RespondWithJSON(w, http.StatusBadRequest, struct {
				Value *float64 `json:"value"`
			}{})
		default:
			utils.RespondWithJSON(w, http.StatusOK, struct {
				Value float64 `json:"value"`
			}{v})
		}
		return
	}

	if len(r.Form) != 1 || !r.Form.Has("uuid") {
		utils.RespondWithJSON(w, http.StatusBadRequest, struct{}{})
		return
	}

	reading, err := h.device.SetUUID(r.Context(), plugin, addr, r.Form.Get("uuid"))
	if errors.Is(err, ErrUnknownSensor) {
		utils.RespondWithError(w, http.StatusNotFound, "sensor not found", err)
		return
	} else if err != nil {
		slog.Warn("sensor binding rejected", "plugin", plugin, "addr", addr, "error", err)
		utils.RespondWithJSON(w, http.StatusBadRequest, struct{}{})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, reading)
}

func (h *Handler) postSettings(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>postSettings")
	defer slog.Debug("<<postSettings")

	if err := r.ParseForm(); err != nil {
		http.Error(w, SETTINGS_REJECTED, http.StatusBadRequest)
		return
	}

	settings := Settings{
		SSID:       r.PostForm.Get("ssid"),
		Pass:       r.PostForm.Get("pass"),
		Middleware: r.PostForm.Get("middleware"),
	}

	if err := h.device.UpdateSettings(settings); err != nil {
		slog.Warn("settings rejected", "error", err)
		http.Error(w, SETTINGS_REJECTED, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(SETTINGS_SAVED))
}
