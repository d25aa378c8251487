// Package static embeds the stylesheet served under /static/.
package static

import (
	"embed"
	"net/http"
)

//go:embed app.css
var FS embed.FS

// Handler serves the embedded assets. Mount it with the /static/ prefix
// stripped.
func Handler() http.Handler {
	return http.FileServerFS(FS)
}
