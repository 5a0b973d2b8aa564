// internal/app/features/adminconsole/handler.go
//
// Package adminconsole serves the admin console pages: navigation, the
// resource tables, the form modal and the toast region. All state lives in
// the browser's console.Console; handlers change it and re-render.
package adminconsole

import (
	"context"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/ccbportal/internal/app/features/errors"
	"github.com/dalemusser/ccbportal/internal/app/features/shared/consolesession"
	"github.com/dalemusser/ccbportal/internal/app/features/shared/views"
	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	consoleHome = "/admin"
	loginPath   = "/admin/login"
)

type Handler struct {
	Sessions *consolesession.Resolver
	ErrLog   *uierrors.ErrorLogger
	View     views.Renderer
	Log      *zap.Logger
}

func NewHandler(sessions *consolesession.Resolver, errLog *uierrors.ErrorLogger, view views.Renderer, logger *zap.Logger) *Handler {
	if view == nil {
		view = views.Templates{}
	}
	return &Handler{
		Sessions: sessions,
		ErrLog:   errLog,
		View:     view,
		Log:      logger,
	}
}

type ctxKey struct{}

// requireConsole lets through only requests whose console has a signed-in
// admin; everyone else is sent to the login form.
func (h *Handler) requireConsole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _, ok := h.Sessions.Lookup(r)
		if !ok || !c.Authenticated() {
			views.Redirect(w, r, loginPath)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, c)))
	})
}

func consoleFrom(r *http.Request) *console.Console {
	c, _ := r.Context().Value(ctxKey{}).(*console.Console)
	return c
}

// respond re-renders the console body after a change. Plain form posts are
// redirected back to the console page. A console that was signed out along
// the way (a 401 mid-load) loses its cached user before the redirect.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, c *console.Console) {
	if !c.Authenticated() {
		h.forgetUser(w, r)
		views.Redirect(w, r, loginPath)
		return
	}
	if !views.IsHTMX(r) {
		http.Redirect(w, r, consoleHome, http.StatusSeeOther)
		return
	}
	h.View.Snippet(w, "console_body", buildBody(r, c))
}

func (h *Handler) forgetUser(w http.ResponseWriter, r *http.Request) {
	_, sess, _ := h.Sessions.Lookup(r)
	if consolesession.CachedUser(sess) == nil {
		return
	}
	consolesession.Forget(sess)
	h.Sessions.Save(w, r, sess)
}

// kindParam reads {kind}; ok is false after a 400 was written.
func (h *Handler) kindParam(w http.ResponseWriter, r *http.Request) (models.Kind, bool) {
	k, ok := models.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "unknown resource kind", nil, "Unknown resource.", consoleHome)
		return "", false
	}
	return k, true
}

// idParam reads {id}; ok is false after a 400 was written.
func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.ErrLog.LogBadRequest(w, r, "bad record id", err, "Invalid record id.", consoleHome)
		return 0, false
	}
	return id, true
}
