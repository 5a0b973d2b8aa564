// internal/app/features/shared/consolesession/consolesession.go
//
// Package consolesession ties a browser to its admin console. The console
// cookie holds the console id and the last confirmed admin user, which is
// shown while the session guard re-checks the backend.
package consolesession

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	"github.com/dalemusser/ccbportal/internal/app/system/auth"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	keyConsoleID  = "console_id"
	keyCachedUser = "admin_user"
)

// Resolver finds or creates the console for a request.
type Resolver struct {
	Sessions *auth.SessionManager
	Consoles *console.Registry
	Log      *zap.Logger
}

func NewResolver(sessions *auth.SessionManager, consoles *console.Registry, logger *zap.Logger) *Resolver {
	return &Resolver{Sessions: sessions, Consoles: consoles, Log: logger}
}

// Lookup returns the console bound to the request's cookie, if it is
// still alive.
func (rv *Resolver) Lookup(r *http.Request) (*console.Console, *sessions.Session, bool) {
	sess := rv.session(r)
	id, _ := sess.Values[keyConsoleID].(string)
	c, ok := rv.Consoles.Get(id)
	return c, sess, ok
}

// Resolve returns the request's console, starting a new one when the
// cookie is missing or names a console that no longer exists. A new
// console's id is written to the cookie before anything else is sent.
func (rv *Resolver) Resolve(w http.ResponseWriter, r *http.Request) (*console.Console, *sessions.Session, error) {
	c, sess, ok := rv.Lookup(r)
	if ok {
		return c, sess, nil
	}

	c, err := rv.Consoles.Create()
	if err != nil {
		return nil, nil, err
	}
	sess.Values[keyConsoleID] = c.ID
	if err := sess.Save(r, w); err != nil {
		rv.Consoles.Remove(c.ID)
		return nil, nil, err
	}
	rv.Log.Debug("console started", zap.String("console", c.ID))
	return c, sess, nil
}

func (rv *Resolver) session(r *http.Request) *sessions.Session {
	sess, err := rv.Sessions.GetSession(r)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			rv.Log.Info("console cookie could not be decoded; starting fresh", zap.Error(err))
		} else {
			rv.Log.Warn("console session read failed", zap.Error(err))
		}
	}
	return sess
}

// CachedUser is the user remembered in the cookie, or nil.
func CachedUser(sess *sessions.Session) *portalclient.User {
	raw, _ := sess.Values[keyCachedUser].(string)
	if raw == "" {
		return nil
	}
	var u portalclient.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// Remember stores u in the cookie. The caller saves the session.
func Remember(sess *sessions.Session, u *portalclient.User) {
	if u == nil {
		delete(sess.Values, keyCachedUser)
		return
	}
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	sess.Values[keyCachedUser] = string(b)
}

// Forget drops the cached user. The console id is kept so the toast queue
// survives a logout.
func Forget(sess *sessions.Session) {
	delete(sess.Values, keyCachedUser)
}

// Save writes the cookie, logging rather than failing the request.
func (rv *Resolver) Save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		rv.Log.Error("console session save failed", zap.Error(err))
	}
}
