// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/ccbportal/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound renders the 404 page. It is installed as the router's NotFound
// handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound, "Page not found", "The page you asked for does not exist.", "/admin")
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusForbidden, "Access denied", "You don't have permission to view this page.", "/admin")
}

// renderError writes status and the error page. HTMX requests get the
// message as a snippet so it can land in the alert region.
func renderError(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, backURL, ""),
		Status:  status,
		Message: msg,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Header.Get("HX-Request") == "true" {
		templates.RenderSnippet(w, "error_snippet", data)
		return
	}
	templates.Render(w, r, "error_page", data)
}
