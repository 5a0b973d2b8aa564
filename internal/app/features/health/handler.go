package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Counter reports how many admin consoles are open.
type Counter interface {
	Len() int
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB       Pinger
	Consoles Counter
	Log      *zap.Logger
}

// NewHandler constructs a health Handler. consoles may be nil.
func NewHandler(db Pinger, consoles Counter, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Consoles: consoles,
		Log:      logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Consoles *int   `json:"consoles,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "consoles":3 }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Consoles != nil {
		n := h.Consoles.Len()
		resp.Consoles = &n
	}
	_ = json.NewEncoder(w).Encode(resp)
}
