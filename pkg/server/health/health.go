package health

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/vzero-dashboard/internal/auth"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
)

func NewHandler(level *slog.LevelVar, apiKey string) *Handler {
	return &Handler{
		level:  level,
		apiKey: apiKey,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/health", h.handlerHealthGet)
	mux.HandleFunc("GET /v1/health/loglevel", h.handlerLogLevelGet)
	mux.HandleFunc("PUT /v1/health/loglevel", auth.RequireApiKey(h.apiKey, h.handlerLogLevelPut))
}

func (h *Handler) handlerHealthGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("enter handlerGetHealth")
	response := struct {
		Status string `json:"status"`
	}{
		Status: "ok",
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) handlerLogLevelGet(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, LogLevelResponse{Level: h.level.Level().String()})
}

func (h *Handler) handlerLogLevelPut(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body for log level", err)
		return
	}

	defer r.Body.Close()

	var req LogLevelRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body for log level", err)
		return
	}

	level, err := utils.ParseLogLevel(req.Level)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid log level", err)
		return
	}

	slog.Info("log level changed", "from", h.level.Level(), "to", level)
	h.level.Set(level)

	utils.RespondWithJSON(w, http.StatusOK, LogLevelResponse{Level: level.String()})
}
