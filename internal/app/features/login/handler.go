// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/ccbportal/internal/app/features/errors"
	"github.com/dalemusser/ccbportal/internal/app/features/shared/consolesession"
	"github.com/dalemusser/ccbportal/internal/app/features/shared/views"
	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	"github.com/dalemusser/ccbportal/internal/app/system/ratelimit"
	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"github.com/dalemusser/ccbportal/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// ConsoleHome is where a signed-in admin lands.
const ConsoleHome = "/admin"

type Handler struct {
	Sessions *consolesession.Resolver
	Limiter  *ratelimit.LoginLimiter
	ErrLog   *uierrors.ErrorLogger
	View     views.Renderer
	Log      *zap.Logger
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Username  string
	ReturnURL string
	Alerts    []console.Alert
}

func NewHandler(sessions *consolesession.Resolver, limiter *ratelimit.LoginLimiter, errLog *uierrors.ErrorLogger, view views.Renderer, logger *zap.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	if view == nil {
		view = views.Templates{}
	}
	return &Handler{
		Sessions: sessions,
		Limiter:  limiter,
		ErrLog:   errLog,
		View:     view,
		Log:      logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	c, sess, ok := h.Sessions.Lookup(r)
	if ok && c.Authenticated() {
		http.Redirect(w, r, ConsoleHome, http.StatusSeeOther)
		return
	}
	if consolesession.CachedUser(sess) != nil {
		consolesession.Forget(sess)
		h.Sessions.Save(w, r, sess)
	}
	h.renderForm(w, r, c, "", "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/login                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/login")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.renderForm(w, r, nil, "Please enter your username and password.", username)
		return
	}

	if allowed, reason := h.Limiter.Check(r, username); !allowed {
		h.Log.Warn("console login rate limited",
			zap.String("username", username),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.renderForm(w, r, nil, reason, username)
		return
	}

	c, sess, err := h.Sessions.Resolve(w, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "console start failed", err, "Unable to start the console. Please try again.", "/admin/login")
		return
	}

	// Login includes the first bulk load.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()
	ctx = portalclient.WithClientIP(ctx, ratelimit.ClientIP(r))

	u, err := c.Login(ctx, username, password)
	if err != nil {
		h.Log.Info("console login rejected", zap.String("username", username), zap.Error(err))
		h.renderForm(w, r, c, loginMessage(err), username)
		return
	}

	h.Limiter.ResetUser(username)
	consolesession.Remember(sess, u)
	h.Sessions.Save(w, r, sess)

	views.Redirect(w, r, urlutil.SafeReturn(r.FormValue("return"), "", ConsoleHome))
}

// loginMessage is the text shown above the form for a failed login.
func loginMessage(err error) string {
	var ae *portalclient.APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return "Unable to reach the server. Please try again."
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, c *console.Console, msg, username string) {
	// From POST, "return" will be in the form; from GET, we might rely on the query.
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	data := loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Admin Login", ConsoleHome, ""),
		Error:     msg,
		Username:  username,
		ReturnURL: ret,
	}
	if c != nil {
		data.Alerts = c.Alerts().List()
	}
	h.View.Page(w, r, "admin_login", data)
}
