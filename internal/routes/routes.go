// Package routes declares the static path table the shell serves.
//
// The table is fixed at compile time. Path selection is left to the chi
// router; this package only describes how each entry is registered.
package routes

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/tunelar/web/internal/templates/components"
	"github.com/tunelar/web/internal/templates/pages"
)

// Route associates a URL path with the view rendered for it.
type Route struct {
	Path  string
	Label string
	// Heading is the placeholder heading, also used for the document title.
	Heading string
	// Exact routes match only their own path. Others also match any
	// sub-path below a segment boundary, so /browse matches /browse/loops
	// but not /browser.
	Exact bool
	Page  func() templ.Component
}

// Match describes how the route is matched, for listings.
func (r Route) Match() string {
	if r.Exact {
		return "exact"
	}
	return "prefix"
}

// Patterns returns the chi patterns registered for the route.
func (r Route) Patterns() []string {
	if r.Exact {
		return []string{r.Path}
	}
	return []string{r.Path, strings.TrimSuffix(r.Path, "/") + "/*"}
}

var table = []Route{
	{Path: "/", Label: "Home", Heading: "Home Page", Exact: true, Page: pages.Home},
	{Path: "/browse", Label: "Browse", Heading: "Browse Page", Page: pages.Browse},
	{Path: "/upload", Label: "Upload", Heading: "Upload Page", Page: pages.Upload},
	{Path: "/profile", Label: "Profile", Heading: "Profile Page", Page: pages.Profile},
}

// All returns a copy of the route table in declaration order.
func All() []Route {
	out := make([]Route, len(table))
	copy(out, table)
	return out
}

// NavLinks returns the navbar entries, one per route, in table order.
func NavLinks() []components.NavLink {
	links := make([]components.NavLink, 0, len(table))
	for _, r := range table {
		links = append(links, components.NavLink{Label: r.Label, Path: r.Path})
	}
	return links
}

// Register declares every route on the router. handlerFor builds the
// handler serving a given route.
func Register(r chi.Router, handlerFor func(Route) http.HandlerFunc) {
	for _, route := range table {
		h := handlerFor(route)
		for _, pattern := range route.Patterns() {
			r.Get(pattern, h)
		}
	}
}
