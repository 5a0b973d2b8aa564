package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Credentials accepted by FakePortal.
const (
	FakeUsername = "registrar"
	FakePassword = "s3cret!"
)

// FakePortal is an in-memory admin REST API served over httptest. It keeps
// one session cookie per signed-in client.
type FakePortal struct {
	t      *testing.T
	Server *httptest.Server

	mu        sync.Mutex
	lists     map[models.Kind][]map[string]any
	nextID    int64
	failWith  map[string]int // "METHOD kind" -> status to answer with
	calls     []string
	lastForm  map[string][]string
	lastFiles []string
}

func NewFakePortal(t *testing.T) *FakePortal {
	t.Helper()
	fp := &FakePortal{
		t:        t,
		lists:    make(map[models.Kind][]map[string]any),
		failWith: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/api/admin/auth-check/", fp.authCheck)
	r.Post("/api/admin/login/", fp.login)
	r.Post("/api/admin/logout/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "", Path: "/", MaxAge: -1})
		fakeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Logged out successfully"})
	})
	r.Get("/api/admin/{kind}/", fp.list)
	r.Post("/api/admin/{kind}/create/", fp.create)
	r.Put("/api/admin/{kind}/{id}/", fp.update)
	r.Post("/api/admin/{kind}/{id}/", fp.update)
	r.Delete("/api/admin/{kind}/{id}/delete/", fp.delete)

	fp.Server = httptest.NewServer(r)
	t.Cleanup(fp.Server.Close)
	return fp
}

// Client returns a fresh API client with its own cookie jar.
func (fp *FakePortal) Client() *portalclient.Client {
	c, err := portalclient.New(fp.Server.URL, fp.Server.Client(), zap.NewNop())
	if err != nil {
		fp.t.Fatalf("portalclient.New: %v", err)
	}
	return c
}

// Registry returns a console registry whose consoles talk to this portal.
func (fp *FakePortal) Registry() *console.Registry {
	return console.NewRegistry(func() (console.API, error) {
		return fp.Client(), nil
	}, time.Minute, zap.NewNop())
}

// Seed stores rec under kind and returns its id.
func (fp *FakePortal) Seed(k models.Kind, rec map[string]any) int64 {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.nextID++
	rec["id"] = fp.nextID
	fp.lists[k] = append(fp.lists[k], rec)
	return fp.nextID
}

// Len is the number of stored records of kind k.
func (fp *FakePortal) Len(k models.Kind) int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return len(fp.lists[k])
}

// Fail makes every request with method on kind answer status.
func (fp *FakePortal) Fail(method string, k models.Kind, status int) {
	fp.mu.Lock()
	fp.failWith[method+" "+string(k)] = status
	fp.mu.Unlock()
}

// Calls lists "METHOD path" for every content request received.
func (fp *FakePortal) Calls() []string {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]string(nil), fp.calls...)
}

// LastForm is the multipart form of the last create or update, nil for JSON.
func (fp *FakePortal) LastForm() (map[string][]string, []string) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.lastForm, fp.lastFiles
}

func fakeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fakeUser() map[string]any {
	return map[string]any{"id": 1, "username": FakeUsername, "is_staff": true}
}

func (fp *FakePortal) signedIn(r *http.Request) bool {
	c, err := r.Cookie("sid")
	return err == nil && c.Value == "ok"
}

func (fp *FakePortal) authCheck(w http.ResponseWriter, r *http.Request) {
	if !fp.signedIn(r) {
		fakeJSON(w, http.StatusOK, map[string]any{"status": "success", "authenticated": false})
		return
	}
	fakeJSON(w, http.StatusOK, map[string]any{"status": "success", "authenticated": true, "user": fakeUser()})
}

func (fp *FakePortal) login(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body["username"] != FakeUsername || body["password"] != FakePassword {
		fakeJSON(w, http.StatusUnauthorized, map[string]any{"status": "error", "message": "Invalid username or password"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "sid", Value: "ok", Path: "/"})
	fakeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Login successful", "user": fakeUser()})
}

// guard records the call and answers 401 or a configured failure. It
// reports whether the handler should continue.
func (fp *FakePortal) guard(w http.ResponseWriter, r *http.Request) (models.Kind, bool) {
	k, _ := models.ParseKind(chi.URLParam(r, "kind"))

	fp.mu.Lock()
	fp.calls = append(fp.calls, r.Method+" "+r.URL.Path)
	status := fp.failWith[r.Method+" "+string(k)]
	fp.mu.Unlock()

	if !fp.signedIn(r) {
		fakeJSON(w, http.StatusUnauthorized, map[string]any{"status": "error", "message": "Authentication required"})
		return k, false
	}
	if status != 0 {
		fakeJSON(w, status, map[string]any{"status": "error", "message": "backend unavailable"})
		return k, false
	}
	return k, true
}

func (fp *FakePortal) list(w http.ResponseWriter, r *http.Request) {
	k, ok := fp.guard(w, r)
	if !ok {
		return
	}
	fp.mu.Lock()
	items := append([]map[string]any{}, fp.lists[k]...)
	fp.mu.Unlock()
	fakeJSON(w, http.StatusOK, map[string]any{"status": "success", "count": len(items), k.ListKey(): items})
}

func (fp *FakePortal) fields(r *http.Request) map[string]any {
	out := map[string]any{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			fp.t.Errorf("parse multipart: %v", err)
			return out
		}
		var files []string
		for name := range r.MultipartForm.File {
			files = append(files, name)
		}
		fp.mu.Lock()
		fp.lastForm, fp.lastFiles = r.MultipartForm.Value, files
		fp.mu.Unlock()
		for name, v := range r.MultipartForm.Value {
			if name == "_method" || name == "remove_image" {
				continue
			}
			out[name] = v[0]
		}
		if v, ok := out["is_active"]; ok {
			out["is_active"] = v == "true"
		}
		if len(files) > 0 {
			out["image"] = "/media/news/upload.png"
		}
		return out
	}
	fp.mu.Lock()
	fp.lastForm, fp.lastFiles = nil, nil
	fp.mu.Unlock()
	_ = json.NewDecoder(r.Body).Decode(&out)
	return out
}

func (fp *FakePortal) create(w http.ResponseWriter, r *http.Request) {
	k, ok := fp.guard(w, r)
	if !ok {
		return
	}
	rec := fp.fields(r)
	fp.Seed(k, rec)
	fakeJSON(w, http.StatusCreated, map[string]any{"status": "success", k.ItemKey(): rec})
}

func (fp *FakePortal) update(w http.ResponseWriter, r *http.Request) {
	k, ok := fp.guard(w, r)
	if !ok {
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	fields := fp.fields(r)

	fp.mu.Lock()
	defer fp.mu.Unlock()
	for _, rec := range fp.lists[k] {
		if rec["id"] == id {
			for key, v := range fields {
				rec[key] = v
			}
			fakeJSON(w, http.StatusOK, map[string]any{"status": "success", k.ItemKey(): rec})
			return
		}
	}
	fakeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "message": k.Noun() + " not found"})
}

func (fp *FakePortal) delete(w http.ResponseWriter, r *http.Request) {
	k, ok := fp.guard(w, r)
	if !ok {
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	fp.mu.Lock()
	defer fp.mu.Unlock()
	cur := fp.lists[k]
	for i, rec := range cur {
		if rec["id"] == id {
			fp.lists[k] = append(cur[:i], cur[i+1:]...)
			if k == models.KindDepartments {
				kept := fp.lists[models.KindPersonnel][:0]
				for _, p := range fp.lists[models.KindPersonnel] {
					if d, _ := models.Record(p).Int("department_id"); d != id {
						kept = append(kept, p)
					}
				}
				fp.lists[models.KindPersonnel] = kept
			}
			fakeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": k.Noun() + " deleted successfully"})
			return
		}
	}
	fakeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "message": k.Noun() + " not found"})
}
