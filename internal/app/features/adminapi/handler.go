// internal/app/features/adminapi/handler.go
package adminapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dalemusser/ccbportal/internal/app/features/shared/records"
	adminuserstore "github.com/dalemusser/ccbportal/internal/app/store/adminusers"
	contentstore "github.com/dalemusser/ccbportal/internal/app/store/content"
	"github.com/dalemusser/ccbportal/internal/app/system/auth"
	"github.com/dalemusser/ccbportal/internal/app/system/ratelimit"
	"github.com/dalemusser/ccbportal/internal/app/system/uploads"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ImageStore is where news images go. waffle's storage.Store satisfies it.
type ImageStore interface {
	uploads.ObjectStore
	URL(path string) string
}

// Handler serves the staff-only content API under /api/admin.
type Handler struct {
	Content    *contentstore.Store
	Records    *records.Presenter
	Users      *adminuserstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Images     ImageStore
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, images ImageStore, logger *zap.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	content := contentstore.New(db)
	return &Handler{
		Content:    content,
		Records:    &records.Presenter{Content: content, Images: images},
		Users:      adminuserstore.New(db),
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Images:     images,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| JSON helpers                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"status":  "error",
		"message": msg,
	})
}

// kindParam resolves the {kind} path segment; unknown kinds get a 404.
func kindParam(w http.ResponseWriter, r *http.Request) (models.Kind, bool) {
	k, ok := models.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown resource")
		return "", false
	}
	return k, true
}

// idParam parses the {id} path segment; anything but a positive integer is
// answered as not found.
func idParam(w http.ResponseWriter, r *http.Request, k models.Kind) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, k.Noun()+" not found")
		return 0, false
	}
	return id, true
}
