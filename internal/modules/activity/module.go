package activity

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/module"
	"github.com/nfrund/propdesk/internal/registry"
)

// KeyFeed resolves the activity feed from the registry.
var KeyFeed = registry.Key[*Feed]("activity.Feed")

// ActivityModule keeps the recent activity feed and serves it.
type ActivityModule struct {
	module.BaseModule
	feed *Feed
}

// New creates a new instance of the ActivityModule.
func New() *ActivityModule {
	return &ActivityModule{}
}

// Name returns the module's unique identifier.
func (m *ActivityModule) Name() string {
	return "activity"
}

// Register creates the feed.
func (m *ActivityModule) Register(reg *registry.Registry) error {
	m.feed = NewFeed(reg.Config().GetActivityBufferSize())
	registry.Set(reg, KeyFeed, m.feed)
	return nil
}

// Boot subscribes the feed to the bus and mounts /api/activity.
func (m *ActivityModule) Boot(ctx context.Context, api *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting ActivityModule: Setting up routes and subscriber...")
	if err := m.feed.Start(ctx, registry.MustGet(reg, registry.KeySubscriber)); err != nil {
		return err
	}

	h := NewHandler(m.feed, originHosts(reg.Config().GetCORSOrigins()))
	api.GET("/activity", h.Recent)
	api.GET("/activity/live", h.Live)
	return nil
}

// Shutdown disconnects live listeners.
func (m *ActivityModule) Shutdown(ctx context.Context) error {
	m.feed.Close()
	return nil
}

// originHosts turns the configured CORS origins into websocket origin patterns.
func originHosts(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
		}
	}
	return out
}
