package handlers

import (
	"log/slog"

	"github.com/tunelar/web/internal/templates/components"
)

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	links  []components.NavLink
	logger *slog.Logger
}

// New creates a new Handlers instance. links are the navbar entries shown
// on every page.
func New(links []components.NavLink, logger *slog.Logger) *Handlers {
	return &Handlers{
		links:  links,
		logger: logger,
	}
}
