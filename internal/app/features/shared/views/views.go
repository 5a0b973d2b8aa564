// internal/app/features/shared/views/views.go
//
// Package views is the rendering seam used by the console pages. Handlers
// render through a Renderer so tests can capture the view name and data
// without booting the template engine.
package views

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Renderer writes a named view.
type Renderer interface {
	// Page renders a full page.
	Page(w http.ResponseWriter, r *http.Request, name string, data any)
	// Snippet renders a fragment for an HTMX swap.
	Snippet(w http.ResponseWriter, name string, data any)
}

// Templates renders through the booted waffle template engine.
type Templates struct{}

func (Templates) Page(w http.ResponseWriter, r *http.Request, name string, data any) {
	templates.Render(w, r, name, data)
}

func (Templates) Snippet(w http.ResponseWriter, name string, data any) {
	templates.RenderSnippet(w, name, data)
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Redirect sends the browser to target: an HX-Redirect header for htmx
// requests, a 303 otherwise.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
