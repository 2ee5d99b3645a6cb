package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"material-tracker/internal/adapter/middleware"
	"material-tracker/internal/infrastructure/logger"
	"material-tracker/internal/usecase/notification"
	"material-tracker/internal/usecase/presence"
)

// PresenceHandler covers admin presence and the notification feeds.
type PresenceHandler struct {
	presence *presence.Usecase
	notify   *notification.Usecase
	log      *zap.Logger
}

func NewPresenceHandler(p *presence.Usecase, n *notification.Usecase, log *zap.Logger) *PresenceHandler {
	return &PresenceHandler{presence: p, notify: n, log: log}
}

type markSeenReq struct {
	// empty marks every decided request
	IDs []string `json:"ids"`
}

func (h *PresenceHandler) Status(c echo.Context) error {
	st, err := h.presence.Status(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err, "failed to load presence")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *PresenceHandler) Heartbeat(c echo.Context) error {
	if err := h.presence.Heartbeat(c.Request().Context(), middleware.ActorFrom(c)); err != nil {
		return writeError(c, h.log, err, "failed to record heartbeat")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PresenceHandler) Offline(c echo.Context) error {
	if err := h.presence.Offline(c.Request().Context(), middleware.ActorFrom(c)); err != nil {
		return writeError(c, h.log, err, "failed to record offline")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PresenceHandler) Unseen(c echo.Context) error {
	dto, err := h.notify.Unseen(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err, "failed to load notifications")
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PresenceHandler) MarkSeen(c echo.Context) error {
	var req markSeenReq
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return bindError(c)
		}
	}
	if err := h.notify.MarkSeen(c.Request().Context(), middleware.ActorFrom(c), req.IDs); err != nil {
		return writeError(c, h.log, err, "failed to update notifications")
	}
	return c.NoContent(http.StatusNoContent)
}

// Events is a server-sent event stream of new and decided requests for the
// admin dashboard.
func (h *PresenceHandler) Events(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := h.notify.Stream(ctx, middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err, "failed to open event stream")
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			b, err := json.Marshal(e)
			if err != nil {
				logger.FromContext(ctx, h.log).Warn("encode event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, b); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
