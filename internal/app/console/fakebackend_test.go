package console_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// fakeBackend is an in-memory admin API.
type fakeBackend struct {
	t  *testing.T
	ts *httptest.Server

	mu          sync.Mutex
	lists       map[models.Kind][]map[string]any
	nextID      int64
	listStatus  int // non-zero: every list call answers with this status
	deleteFail  string
	deleteCalls []string
	requests    []*recordedRequest
	holding     bool
	blocked     chan struct{}
	release     chan struct{}
}

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Form   map[string][]string
	Files  []string
	JSON   map[string]any
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		t:       t,
		lists:   make(map[models.Kind][]map[string]any),
		blocked: make(chan struct{}, 64),
		release: make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Get("/api/admin/auth-check/", fb.authCheck)
	r.Post("/api/admin/login/", fb.login)
	r.Post("/api/admin/logout/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
	})
	r.Get("/api/admin/{kind}/", fb.list)
	r.Post("/api/admin/{kind}/create/", fb.create)
	r.Put("/api/admin/{kind}/{id}/", fb.update)
	r.Post("/api/admin/{kind}/{id}/", fb.update)
	r.Delete("/api/admin/{kind}/{id}/delete/", fb.delete)

	fb.ts = httptest.NewServer(r)
	t.Cleanup(func() {
		fb.mu.Lock()
		select {
		case <-fb.release:
		default:
			close(fb.release)
		}
		fb.mu.Unlock()
		fb.ts.Close()
	})
	return fb
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) client() *portalclient.Client {
	c, err := portalclient.New(fb.ts.URL, fb.ts.Client(), zap.NewNop())
	if err != nil {
		fb.t.Fatalf("portalclient.New: %v", err)
	}
	return c
}

// newConsole returns a console already signed in and loaded.
func (fb *fakeBackend) newConsole() *console.Console {
	fb.t.Helper()
	c := console.New("test", fb.client(), 0, zap.NewNop())
	if _, err := c.Login(fb.t.Context(), "registrar", "s3cret!"); err != nil {
		fb.t.Fatalf("login failed: %v", err)
	}
	return c
}

func (fb *fakeBackend) seed(k models.Kind, rec map[string]any) int64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	rec["id"] = fb.nextID
	fb.lists[k] = append(fb.lists[k], rec)
	return fb.nextID
}

func (fb *fakeBackend) hold() {
	fb.mu.Lock()
	fb.holding = true
	fb.mu.Unlock()
}

func (fb *fakeBackend) unhold() {
	fb.mu.Lock()
	fb.holding = false
	fb.mu.Unlock()
}

func (fb *fakeBackend) lastRequest() *recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.requests) == 0 {
		return nil
	}
	return fb.requests[len(fb.requests)-1]
}

func (fb *fakeBackend) deletes() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.deleteCalls...)
}

func (fb *fakeBackend) authed(r *http.Request) bool {
	c, err := r.Cookie("sid")
	return err == nil && c.Value == "ok"
}

func (fb *fakeBackend) authCheck(w http.ResponseWriter, r *http.Request) {
	if !fb.authed(r) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success", "authenticated": true,
		"user": map[string]any{"id": 1, "username": "registrar", "is_staff": true},
	})
}

func (fb *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body["username"] != "registrar" || body["password"] != "s3cret!" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": "error", "message": "Invalid username or password"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "sid", Value: "ok", Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success", "message": "Login successful",
		"user": map[string]any{"id": 1, "username": "registrar", "is_staff": true},
	})
}

func kindParam(r *http.Request) models.Kind {
	k, _ := models.ParseKind(chi.URLParam(r, "kind"))
	return k
}

func (fb *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	k := kindParam(r)

	fb.mu.Lock()
	holding, status := fb.holding, fb.listStatus
	fb.mu.Unlock()

	if holding {
		fb.blocked <- struct{}{}
		select {
		case <-fb.release:
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeJSON(w, status, map[string]any{"status": "error", "message": "Authentication required"})
		return
	}

	fb.mu.Lock()
	items := append([]map[string]any{}, fb.lists[k]...)
	fb.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "count": len(items), k.ListKey(): items})
}

func (fb *fakeBackend) record(r *http.Request) (*recordedRequest, map[string]any) {
	rr := &recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()}
	fields := map[string]any{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			fb.t.Errorf("parse multipart: %v", err)
		}
		rr.Form = r.MultipartForm.Value
		for name := range r.MultipartForm.File {
			rr.Files = append(rr.Files, name)
		}
		for name, v := range r.MultipartForm.Value {
			if name == "_method" || name == "remove_image" {
				continue
			}
			fields[name] = v[0]
		}
		if v, ok := fields["is_active"]; ok {
			fields["is_active"] = v == "true"
		}
	} else {
		_ = json.NewDecoder(r.Body).Decode(&rr.JSON)
		for k, v := range rr.JSON {
			fields[k] = v
		}
	}
	fb.mu.Lock()
	fb.requests = append(fb.requests, rr)
	fb.mu.Unlock()
	return rr, fields
}

func (fb *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	k := kindParam(r)
	_, fields := fb.record(r)
	id := fb.seed(k, fields)
	fields["id"] = id
	writeJSON(w, http.StatusCreated, map[string]any{"status": "success", k.ItemKey(): fields})
}

func (fb *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	k := kindParam(r)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	_, fields := fb.record(r)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, rec := range fb.lists[k] {
		if rec["id"] == id {
			for key, v := range fields {
				rec[key] = v
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", k.ItemKey(): rec})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "message": k.Noun() + " not found"})
}

func (fb *fakeBackend) delete(w http.ResponseWriter, r *http.Request) {
	k := kindParam(r)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.deleteCalls = append(fb.deleteCalls, string(k)+"/"+chi.URLParam(r, "id"))
	if fb.deleteFail != "" {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": fb.deleteFail})
		return
	}
	cur := fb.lists[k]
	for i, rec := range cur {
		if rec["id"] == id {
			fb.lists[k] = append(cur[:i], cur[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "message": "not found"})
}
