// Package module defines how a feature plugs into the server.
package module

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/registry"
)

// Module is one feature area of the API (users, properties, ...).
//
// The server calls Register on every module before it calls Boot on any, so
// Boot may resolve services that a later module registered. Shutdown runs in
// reverse order.
type Module interface {
	Name() string

	// Register builds the module's services from the core keys and publishes
	// the ones other modules may need.
	Register(reg *registry.Registry) error

	// Boot mounts routes on api, the authenticated /api group, and starts
	// background work bound to ctx.
	Boot(ctx context.Context, api *echo.Group, reg *registry.Registry) error

	Shutdown(ctx context.Context) error
}

// BaseModule gives no-op lifecycle methods to embed.
type BaseModule struct{}

func (*BaseModule) Register(*registry.Registry) error { return nil }

func (*BaseModule) Boot(context.Context, *echo.Group, *registry.Registry) error { return nil }

func (*BaseModule) Shutdown(context.Context) error { return nil }
