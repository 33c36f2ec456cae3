package notifications

import (
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
)

type NoticeLister interface {
	List() []notices.Notice
}

type Handler struct {
	notices NoticeLister
}

func NewHandler(lister NoticeLister) *Handler {
	return &Handler{lister}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/notifications", h.handlerNotificationsGet)
}

func (h *Handler) handlerNotificationsGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerNotificationsGet")

	utils.RespondWithJSON(w, http.StatusOK, h.notices.List())
}
