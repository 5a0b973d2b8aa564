// internal/app/features/publicapi/handler.go
package publicapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/ccbportal/internal/app/features/shared/records"
	contentstore "github.com/dalemusser/ccbportal/internal/app/store/content"
	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the read-only content feed the public site renders from.
type Handler struct {
	Records *records.Presenter
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, images records.URLer, logger *zap.Logger) *Handler {
	return &Handler{
		Records: &records.Presenter{Content: contentstore.New(db), Images: images},
		Log:     logger,
	}
}

// List handles GET /api/{kind}/. Inactive records are never returned.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	k, ok := models.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "message": "Unknown resource"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	recs, err := h.Records.List(ctx, k, true)
	if err != nil {
		h.Log.Error("public list failed", zap.String("kind", string(k)), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "Error fetching " + k.Phrase(),
		})
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"count":     len(recs),
		k.ListKey(): recs,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
