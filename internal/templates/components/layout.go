// Package components contains the application chrome shared by every page.
package components

import (
	"strings"

	"github.com/a-h/templ"
)

// AppName is the brand shown in the navbar and in document titles.
const AppName = "Tunelar"

// StylesheetPath is where the shell expects the embedded stylesheet.
const StylesheetPath = "/static/app.css"

// ShellOptions configures a full-page render.
type ShellOptions struct {
	Title string
	Brand string
	Links []NavLink
	// Content is rendered inside <main>. Nil leaves the main region empty.
	Content templ.Component
}

func (o ShellOptions) title() string {
	if o.Title == "" {
		return AppName
	}
	return o.Title
}

func (o ShellOptions) brand() string {
	if o.Brand == "" {
		return AppName
	}
	return o.Brand
}

// PageTitle composes a document title from a page heading.
func PageTitle(heading string) string {
	heading = strings.TrimSpace(heading)
	if heading == "" || heading == AppName {
		return AppName
	}
	return heading + " | " + AppName
}
