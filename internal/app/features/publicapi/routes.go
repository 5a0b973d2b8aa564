// internal/app/features/publicapi/routes.go
package publicapi

import "github.com/go-chi/chi/v5"

// Routes mounts under /api, after /api/admin so the admin prefix wins.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{kind}/", h.List)
	return r
}
