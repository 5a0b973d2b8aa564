// internal/app/features/adminapi/auth.go
package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	adminuserstore "github.com/dalemusser/ccbportal/internal/app/store/adminusers"
	"github.com/dalemusser/ccbportal/internal/app/system/auth"
	"github.com/dalemusser/ccbportal/internal/app/system/authutil"
	"github.com/dalemusser/ccbportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ccbportal/internal/app/system/inputval"
	"github.com/dalemusser/ccbportal/internal/app/system/ratelimit"
	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const maxUsernameLen = 150

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/admin/login/                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON data")
		return
	}
	req.Username = cleanUsername(req.Username)

	if res := inputval.Validate(req); res.HasErrors() {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if ok, reason := h.Limiter.Check(r, req.Username); !ok {
		h.Log.Warn("login rate limited",
			zap.String("username", req.Username),
			zap.String("ip", ratelimit.ClientIP(r)))
		writeError(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, adminuserstore.ErrNotFound) {
		h.Log.Error("login: user lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if err != nil || !authutil.CheckPassword(req.Password, u.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !u.CanAdmin() {
		writeError(w, http.StatusForbidden, "Account is not active or does not have admin privileges")
		return
	}

	if _, err := h.SessionMgr.GetSession(r); err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			h.Log.Warn("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			h.Log.Error("session store error during login, using fresh session", zap.Error(err))
		}
	}
	su := adminuserstore.SessionUser(u)
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("login: save session failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	h.Limiter.ResetUser(req.Username)

	if err := h.Users.TouchLastLogin(ctx, u.ID); err != nil {
		h.Log.Warn("login: record last login failed", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	h.Log.Info("admin login", zap.String("username", u.Username))

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Login successful",
		"user":    su,
	})
}

// cleanUsername strips markup and NUL bytes and caps the length.
func cleanUsername(s string) string {
	s = htmlsanitize.StripTags(strings.ReplaceAll(s, "\x00", ""))
	if r := []rune(s); len(r) > maxUsernameLen {
		s = string(r[:maxUsernameLen])
	}
	return s
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/admin/logout/                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("logout: clear session failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Logged out successfully",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/admin/auth-check/                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// AuthCheck runs behind RequireSignedIn, so a user is always present here.
func (h *Handler) AuthCheck(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"authenticated": true,
		"user":          u,
	})
}
