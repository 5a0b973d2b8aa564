// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/ccbportal/internal/app/features/shared/consolesession"
	"github.com/dalemusser/ccbportal/internal/app/features/shared/views"
	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	Sessions *consolesession.Resolver
}

func NewHandler(sessions *consolesession.Resolver, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		Sessions: sessions,
	}
}

// HandleLogout handles POST /admin/logout. The backend session is ended
// through the console; the cached user is cleared either way.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	c, sess, ok := h.Sessions.Lookup(r)
	if ok {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		defer cancel()
		c.Logout(ctx)
	}

	consolesession.Forget(sess)
	h.Sessions.Save(w, r, sess)

	// HTMX handling: HX-Redirect forces a client-side navigation to the login form.
	views.Redirect(w, r, "/admin/login")
}
