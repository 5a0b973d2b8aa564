// internal/app/features/adminapi/routes.go
package adminapi

import (
	"github.com/dalemusser/ccbportal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/admin. sm.LoadSessionUser must already run on
// the parent router.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/login/", h.Login)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/auth-check/", h.AuthCheck)
		pr.Post("/logout/", h.Logout)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireStaff)
		pr.Get("/{kind}/", h.List)
		pr.Post("/{kind}/create/", h.Create)
		pr.Put("/{kind}/{id}/", h.Update)
		pr.Patch("/{kind}/{id}/", h.Update)
		pr.Post("/{kind}/{id}/", h.Update)
		pr.Delete("/{kind}/{id}/delete/", h.Delete)
	})
	return r
}
