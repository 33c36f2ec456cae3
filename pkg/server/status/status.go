package status

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/KyleBrandon/vzero-dashboard/pkg/server/monitor"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func NewHandler(mctx *monitor.MonitorContext, originPatterns []string) *Handler {
	h := Handler{
		mctx,
		originPatterns,
	}

	return &h
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/status", h.handleStatusGet)
	mux.HandleFunc("/v1/status/ws", h.handleStatusWS)
}

func (h *Handler) handleStatusGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handleStatusGet")

	utils.RespondWithJSON(w, http.StatusOK, h.buildStatus())
}

func (h *Handler) handleStatusWS(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleWS: new incoming connection")
	defer slog.Debug("<<handleWS")

	opts := &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("websocket accept error:", "error", err)
		return
	}

	defer c.Close(websocket.StatusInternalError, "Unexpected connection close")

	ctx := c.CloseRead(r.Context())

	h.monitorStatus(ctx, c)
}

func (h *Handler) monitorStatus(ctx context.Context, c *websocket.Conn) {
	slog.Debug(">>monitorStatus")
	defer slog.Debug("<<monitorStatus")

	ticker := time.NewTicker(1 * time.Second)
	heartbeatTicker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer heartbeatTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitorStatus: client disconnected")
			c.Close(websocket.StatusNormalClosure, "Connection closed")
			return

		case <-ticker.C:
			err := wsjson.Write(ctx, c, h.buildStatus())
			if err != nil {
				slog.Error("monitorStatus: error writing to client", "error", err)
				c.Close(websocket.StatusInternalError, "error writing status")
				return
			}

		case <-heartbeatTicker.C:
			err := c.Ping(ctx)
			if err != nil {
				slog.Error("monitorStatus: error sending ping", "error", err)
				c.Close(websocket.StatusInternalError, "error sending ping")
				return
			}
		}
	}
}

func (h *Handler) buildStatus() SystemStatus {
	sensors := h.mctx.Sensors()

	connected := 0
	for _, s := range sensors {
		if s.Connected() {
			connected++
		}
	}

	return SystemStatus{
		Device:         h.mctx.Status(),
		Sparkline:      h.mctx.Sparkline(),
		Middleware:     h.mctx.MiddlewareURL(),
		Frontend:       h.mctx.FrontendURL(),
		SensorCount:    len(sensors),
		ConnectedCount: connected,
		Notices:        h.mctx.Notices.List(),
	}
}
