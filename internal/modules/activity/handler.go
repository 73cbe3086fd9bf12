package activity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/handlers"
	"github.com/nfrund/propdesk/internal/middleware"
)

const writeTimeout = 10 * time.Second

// Handler serves the activity endpoints.
type Handler struct {
	feed           *Feed
	originPatterns []string
}

// NewHandler creates a new Handler. originPatterns are the hosts allowed to
// open the live socket from a browser.
func NewHandler(feed *Feed, originPatterns []string) *Handler {
	return &Handler{feed: feed, originPatterns: originPatterns}
}

// Recent handles GET /api/activity?limit=.
func (h *Handler) Recent(c echo.Context) error {
	limit, err := handlers.QueryInt(c, "limit")
	if err != nil {
		return err
	}
	n := 0
	if limit != nil {
		if *limit < 1 {
			return domain.FieldError("limit", "must be greater than 0")
		}
		n = *limit
	}
	return c.JSON(http.StatusOK, h.feed.Recent(n))
}

// Live handles GET /api/activity/live. Each new event is written to the
// socket as a JSON message until the client goes away.
func (h *Handler) Live(c echo.Context) error {
	logger := middleware.FromContext(c.Request().Context())

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		logger.Warn("Failed to upgrade activity WebSocket", slog.String("error", err.Error()))
		return nil
	}
	defer conn.CloseNow()

	l := h.feed.Listen()
	defer h.feed.Unlisten(l)

	// The client never sends anything; CloseRead handles control frames and
	// cancels ctx once the peer disconnects.
	ctx := conn.CloseRead(c.Request().Context())
	logger.Info("Activity listener connected")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Activity listener disconnected")
			return nil
		case ev, ok := <-l.Events:
			if !ok {
				if l.Dropped() {
					conn.Close(websocket.StatusPolicyViolation, "too slow")
				} else {
					conn.Close(websocket.StatusGoingAway, "server shutting down")
				}
				return nil
			}
			if err := write(ctx, conn, ev); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Warn("Failed to write activity event", slog.String("error", err.Error()))
				}
				return nil
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, ev domain.EntityEvent) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
