// internal/app/features/adminconsole/pages.go
package adminconsole

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/ccbportal/internal/app/features/shared/consolesession"
	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"github.com/dalemusser/ccbportal/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeConsole runs the session guard and renders the console, or sends the
// browser to the login form.
func (h *Handler) ServeConsole(w http.ResponseWriter, r *http.Request) {
	c, sess, err := h.Sessions.Resolve(w, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "console start failed", err, "Unable to start the console. Please try again.", loginPath)
		return
	}

	// The first confirmed entry also runs the bulk load.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u := c.Enter(ctx, consolesession.CachedUser(sess))
	if u == nil {
		consolesession.Forget(sess)
		h.Sessions.Save(w, r, sess)
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	consolesession.Remember(sess, u)
	h.Sessions.Save(w, r, sess)

	h.View.Page(w, r, "console_page", pageData{
		BaseVM: viewdata.NewBaseVM(r, c.Tab().Label(), consoleHome, u.Username),
		Body:   buildBody(r, c),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| navigation                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleTab handles POST /admin/tab.
func (h *Handler) HandleTab(w http.ResponseWriter, r *http.Request) {
	c := consoleFrom(r)
	t, ok := console.ParseTab(r.FormValue("tab"))
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "unknown tab", nil, "Unknown tab.", consoleHome)
		return
	}
	c.SetTab(t, console.ViewportFrom(r))
	h.respond(w, r, c)
}

// HandleMenu handles POST /admin/menu.
func (h *Handler) HandleMenu(w http.ResponseWriter, r *http.Request) {
	c := consoleFrom(r)
	c.ToggleMenu()
	h.respond(w, r, c)
}

// HandleReload handles POST /admin/reload. Failures surface as toasts.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	c := consoleFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := c.Reload(ctx); err != nil {
		h.Log.Info("reload did not complete", zap.String("console", c.ID), zap.Error(err))
	}
	h.respond(w, r, c)
}

/*─────────────────────────────────────────────────────────────────────────────*
| toasts                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// The toast routes work for signed-out consoles too, so the login form can
// show "Logged out" and "Session expired".

// ServeAlerts handles GET /admin/alerts, polled by the toast region.
func (h *Handler) ServeAlerts(w http.ResponseWriter, r *http.Request) {
	h.renderAlerts(w, r)
}

// HandleDismiss handles POST /admin/alerts/{id}/dismiss.
func (h *Handler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad alert id", err, "Invalid alert id.", consoleHome)
		return
	}
	if c, _, ok := h.Sessions.Lookup(r); ok {
		c.Alerts().Remove(id)
	}
	h.renderAlerts(w, r)
}

// HandleClearAlerts handles POST /admin/alerts/clear.
func (h *Handler) HandleClearAlerts(w http.ResponseWriter, r *http.Request) {
	if c, _, ok := h.Sessions.Lookup(r); ok {
		c.Alerts().Clear()
	}
	h.renderAlerts(w, r)
}

func (h *Handler) renderAlerts(w http.ResponseWriter, r *http.Request) {
	var list []console.Alert
	if c, _, ok := h.Sessions.Lookup(r); ok {
		list = c.Alerts().List()
	}
	h.View.Snippet(w, "console_alert_region", list)
}
