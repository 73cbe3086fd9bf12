package app

import (
	"github.com/nfrund/propdesk/internal/module"
	"github.com/nfrund/propdesk/internal/modules/activity"
	"github.com/nfrund/propdesk/internal/modules/developments"
	"github.com/nfrund/propdesk/internal/modules/professionals"
	"github.com/nfrund/propdesk/internal/modules/properties"
	"github.com/nfrund/propdesk/internal/modules/users"
)

// NewModules creates and returns the list of all active modules for the application.
// This is the single source of truth for which features are enabled.
func NewModules() []module.Module {
	return []module.Module{
		users.New(),
		developments.New(),
		professionals.New(),
		properties.New(),
		activity.New(),
	}
}
