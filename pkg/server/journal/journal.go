package journal

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KyleBrandon/vzero-dashboard/internal/journal"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
)

const MAX_LIMIT = 500

type JournalLister interface {
	List(ctx context.Context, limit int) ([]journal.Entry, error)
}

type Handler struct {
	store JournalLister
}

func NewHandler(store JournalLister) *Handler {
	return &Handler{store}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/journal", h.handlerJournalGet)
}

func (h *Handler) handlerJournalGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerJournalGet")
	defer slog.Debug("<<handlerJournalGet")

	limit := journal.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > MAX_LIMIT {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	entries, err := h.store.List(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to read the journal", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, entries)
}
