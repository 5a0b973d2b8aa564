// internal/app/features/adminconsole/routes.go
package adminconsole

import "github.com/go-chi/chi/v5"

// Routes is mounted at /admin. /admin/login and /admin/logout are served by
// their own features.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeConsole)

	r.Get("/alerts", h.ServeAlerts)
	r.Post("/alerts/clear", h.HandleClearAlerts)
	r.Post("/alerts/{id}/dismiss", h.HandleDismiss)

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireConsole)
		pr.Post("/tab", h.HandleTab)
		pr.Post("/menu", h.HandleMenu)
		pr.Post("/reload", h.HandleReload)

		pr.Post("/modal/cancel", h.HandleCancel)
		pr.Post("/modal/submit", h.HandleSubmit)

		pr.Post("/{kind}/new", h.HandleNew)
		pr.Post("/{kind}/{id}/edit", h.HandleEdit)
		pr.Post("/{kind}/{id}/delete", h.HandleDelete)
	})

	return r
}
