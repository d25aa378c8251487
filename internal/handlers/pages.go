package handlers

import (
	"bytes"
	"net/http"

	"github.com/tunelar/web/internal/middleware"
	"github.com/tunelar/web/internal/routes"
	"github.com/tunelar/web/internal/templates/components"
)

// Page returns the handler rendering the shell with the route's view.
func (h *Handlers) Page(route routes.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusOK, components.ShellOptions{
			Title:   components.PageTitle(route.Heading),
			Links:   h.links,
			Content: route.Page(),
		})
	}
}

// NotFound renders the shell with nothing in the main region.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, components.ShellOptions{
		Title: components.PageTitle(""),
		Links: h.links,
	})
}

// render buffers the document so a failed render never leaves a
// half-written page behind a 200.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, opts components.ShellOptions) {
	var buf bytes.Buffer
	if err := components.Shell(opts).Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page",
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
