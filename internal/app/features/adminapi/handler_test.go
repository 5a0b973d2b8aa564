package adminapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/ccbportal/internal/app/features/adminapi"
	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	adminuserstore "github.com/dalemusser/ccbportal/internal/app/store/adminusers"
	"github.com/dalemusser/ccbportal/internal/app/system/auth"
	"github.com/dalemusser/ccbportal/internal/app/system/ratelimit"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/dalemusser/ccbportal/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// memImages is an in-memory image store.
type memImages struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (m *memImages) Put(_ context.Context, path string, r io.Reader, _ *storage.PutOptions) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs[path] = b
	return nil
}

func (m *memImages) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, path)
	return nil
}

func (m *memImages) URL(path string) string { return "/media/" + path }

func (m *memImages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objs)
}

type env struct {
	h      *adminapi.Handler
	srv    *httptest.Server
	fx     *testutil.Fixtures
	images *memImages
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager(strings.Repeat("s", 32), "ccb-admin-test", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	sm.SetUserFetcher(adminuserstore.NewFetcher(db))

	images := &memImages{objs: map[string][]byte{}}
	limiter := ratelimit.NewLoginLimiterWithConfig(1000, time.Minute, 1000, time.Minute)
	h := adminapi.NewHandler(db, sm, limiter, images, logger)

	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Mount("/api/admin", adminapi.Routes(h, sm))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &env{h: h, srv: srv, fx: testutil.NewFixtures(t, db), images: images}
}

func (e *env) client(t *testing.T) *portalclient.Client {
	t.Helper()
	c, err := portalclient.New(e.srv.URL, e.srv.Client(), zap.NewNop())
	if err != nil {
		t.Fatalf("portalclient.New: %v", err)
	}
	return c
}

func (e *env) staffClient(t *testing.T) *portalclient.Client {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateStaff(ctx, "registrar")
	c := e.client(t)
	if _, err := c.Login(ctx, "registrar", testutil.TestPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	return c
}

func statusOf(err error) int {
	var apiErr *portalclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

/*─────────────────────────────────────────────────────────────────────────────*
| auth                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func TestLogin_Outcomes(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fx.CreateStaff(ctx, "staff")
	e.fx.CreateNonStaff(ctx, "student")
	e.fx.CreateInactiveStaff(ctx, "retired")

	tests := []struct {
		name       string
		username   string
		password   string
		wantStatus int
		wantMsg    string
	}{
		{"missing password", "staff", "", http.StatusBadRequest, "Username and password are required"},
		{"tags only username", "<b></b>", "x", http.StatusBadRequest, "Username and password are required"},
		{"wrong password", "staff", "nope", http.StatusUnauthorized, "Invalid username or password"},
		{"unknown user", "ghost", testutil.TestPassword, http.StatusUnauthorized, "Invalid username or password"},
		{"non staff", "student", testutil.TestPassword, http.StatusForbidden, "Account is not active or does not have admin privileges"},
		{"inactive", "retired", testutil.TestPassword, http.StatusForbidden, "Account is not active or does not have admin privileges"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.client(t).Login(ctx, tt.username, tt.password)
			if statusOf(err) != tt.wantStatus {
				t.Fatalf("expected status %d, got %v", tt.wantStatus, err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestLogin_SessionRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateStaff(ctx, "dean")

	c := e.client(t)
	if _, err := c.AuthCheck(ctx); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %v", err)
	}

	u, err := c.Login(ctx, "dean", testutil.TestPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Username != "dean" || !u.IsStaff {
		t.Errorf("unexpected user %+v", u)
	}

	checked, err := c.AuthCheck(ctx)
	if err != nil || checked == nil || checked.ID != u.ID {
		t.Fatalf("auth check after login: %+v, %v", checked, err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := c.AuthCheck(ctx); statusOf(err) != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %v", err)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(strings.Repeat("s", 32), "ccb-admin-test", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	h := adminapi.NewHandler(db, sm, limiter, nil, logger)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		body, _ := json.Marshal(map[string]string{"username": "someone", "password": "bad"})
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login/", bytes.NewReader(body))
		last = httptest.NewRecorder()
		h.Login(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 on the third attempt, got %d", last.Code)
	}
}

func TestLogin_IPBudgetFollowsForwardedBrowser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(strings.Repeat("s", 32), "ccb-admin-test", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	limiter := ratelimit.NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)
	h := adminapi.NewHandler(db, sm, limiter, nil, logger)
	r := chi.NewRouter()
	r.Mount("/api/admin", adminapi.Routes(h, sm))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	// Both requests leave from this process, as console logins do.
	login := func(browserIP string) int {
		c, err := portalclient.New(srv.URL, srv.Client(), zap.NewNop())
		if err != nil {
			t.Fatalf("portalclient.New: %v", err)
		}
		ctx := portalclient.WithClientIP(t.Context(), browserIP)
		_, err = c.Login(ctx, "someone-"+browserIP, "bad")
		return statusOf(err)
	}

	if got := login("203.0.113.7"); got != http.StatusUnauthorized {
		t.Fatalf("first browser: expected 401, got %d", got)
	}
	if got := login("198.51.100.9"); got != http.StatusUnauthorized {
		t.Errorf("second browser has its own budget: expected 401, got %d", got)
	}
	if got := login("203.0.113.7"); got != http.StatusTooManyRequests {
		t.Errorf("first browser again: expected 429, got %d", got)
	}
}

func TestContent_RequiresStaffSession(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := e.client(t).List(ctx, models.KindEvents)
	if !portalclient.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	if err.Error() != "Authentication required" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| content                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func TestCreateListUpdateDelete_Event(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec, err := c.Submit(ctx, portalclient.Submission{
		Kind: models.KindEvents,
		Payload: models.Record{
			"title":       "Open House <script>alert(1)</script>",
			"description": "Tour the <b>campus</b>",
			"event_date":  "03/14/2025",
			"start_time":  "09:00:00",
			"end_time":    "11:30",
			"is_active":   true,
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID() == 0 {
		t.Fatal("expected an id")
	}
	if got := rec.String("title"); strings.Contains(got, "<") {
		t.Errorf("title should be stripped of markup, got %q", got)
	}
	if got := rec.String("description"); got != "Tour the <b>campus</b>" {
		t.Errorf("description should keep safe markup, got %q", got)
	}
	if rec.String("event_date") != "2025-03-14" || rec.String("start_time") != "09:00" {
		t.Errorf("date/time not normalized: %v", rec)
	}
	if n, _ := rec.Int("display_order"); n != 0 {
		t.Errorf("expected default display_order 0, got %d", n)
	}

	updated, err := c.Submit(ctx, portalclient.Submission{
		Kind:    models.KindEvents,
		ID:      rec.ID(),
		Payload: models.Record{"location": "Main Hall", "is_active": false},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.String("location") != "Main Hall" || updated.Bool("is_active") {
		t.Errorf("update not applied: %v", updated)
	}
	if updated.String("description") != rec.String("description") {
		t.Error("fields absent from the body must be kept")
	}

	list, err := c.List(ctx, models.KindEvents)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("inactive records are listed for admins, expected 1, got %d", len(list))
	}

	if err := c.Delete(ctx, models.KindEvents, rec.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = c.Delete(ctx, models.KindEvents, rec.ID())
	if statusOf(err) != http.StatusNotFound || err.Error() != "Event not found" {
		t.Errorf("expected 404 Event not found, got %v", err)
	}
}

func TestCreate_MissingRequiredField(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := c.Submit(ctx, portalclient.Submission{
		Kind:    models.KindNotes,
		Payload: models.Record{"title": "Deadlines"},
	})
	if statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if err.Error() != `Field "note_text" is required` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestCreate_InvalidEmail(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := c.Submit(ctx, portalclient.Submission{
		Kind:    models.KindDepartments,
		Payload: models.Record{"name": "Registrar", "email": "not-an-email"},
	})
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := c.Submit(ctx, portalclient.Submission{
		Kind: models.KindPrograms, ID: 999, Payload: models.Record{"title": "x"},
	})
	if statusOf(err) != http.StatusNotFound || err.Error() != "Program not found" {
		t.Errorf("expected 404 Program not found, got %v", err)
	}
}

func TestPersonnel_DepartmentRules(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	dept := e.fx.CreateDepartment(ctx, "Computer Studies")

	_, err := c.Submit(ctx, portalclient.Submission{
		Kind: models.KindPersonnel,
		Payload: models.Record{
			"department_id": 4242, "first_name": "Ada", "last_name": "Lovelace", "title": "Professor",
		},
	})
	if statusOf(err) != http.StatusBadRequest || err.Error() != "Department not found" {
		t.Fatalf("expected 400 Department not found, got %v", err)
	}

	p, err := c.Submit(ctx, portalclient.Submission{
		Kind: models.KindPersonnel,
		Payload: models.Record{
			"department_id":  dept.ID(),
			"first_name":     "Ada",
			"middle_name":    "King",
			"last_name":      "Lovelace",
			"title":          "Professor",
			"specialization": "Analytical Engines",
		},
	})
	if err != nil {
		t.Fatalf("create personnel: %v", err)
	}
	if p.String("full_name") != "Ada King Lovelace" {
		t.Errorf("unexpected full_name %q", p.String("full_name"))
	}
	if p.String("display_title") != "Professor - Analytical Engines" {
		t.Errorf("unexpected display_title %q", p.String("display_title"))
	}
	if p.String("department_name") != "Computer Studies" {
		t.Errorf("unexpected department_name %q", p.String("department_name"))
	}

}

func TestDelete_DepartmentTakesItsPersonnel(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	nursing := e.fx.CreateDepartment(ctx, "Nursing")
	library := e.fx.CreateDepartment(ctx, "Library")
	person := func(dept int64, first string) models.Record {
		rec, err := c.Submit(ctx, portalclient.Submission{
			Kind: models.KindPersonnel,
			Payload: models.Record{
				"department_id": dept, "first_name": first, "last_name": "Smith", "title": "Instructor",
			},
		})
		if err != nil {
			t.Fatalf("create personnel: %v", err)
		}
		return rec
	}
	person(nursing.ID(), "Ada")
	person(nursing.ID(), "Mary")
	kept := person(library.ID(), "Grace")

	if err := c.Delete(ctx, models.KindDepartments, nursing.ID()); err != nil {
		t.Fatalf("delete department: %v", err)
	}

	staff, err := c.List(ctx, models.KindPersonnel)
	if err != nil {
		t.Fatalf("list personnel: %v", err)
	}
	if len(staff) != 1 || staff[0].ID() != kept.ID() {
		t.Errorf("expected only personnel %d left, got %v", kept.ID(), staff)
	}
	depts, err := c.List(ctx, models.KindDepartments)
	if err != nil {
		t.Fatalf("list departments: %v", err)
	}
	if len(depts) != 1 || depts[0].ID() != library.ID() {
		t.Errorf("expected only Library left, got %v", depts)
	}
}

func TestFreeText_StoredAsTyped(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	const text = "Grades A & B; GPA < 2.0 not accepted"
	rec, err := c.Submit(ctx, portalclient.Submission{
		Kind:    models.KindRequirements,
		Payload: models.Record{"category": "new-scholar", "requirement_text": text},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := c.List(ctx, models.KindRequirements)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].String("requirement_text") != text {
		t.Fatalf("expected %q after reload, got %v", text, list)
	}

	// Saving the edit form unchanged must not alter the text.
	updated, err := c.Submit(ctx, portalclient.Submission{
		Kind:    models.KindRequirements,
		ID:      rec.ID(),
		Payload: models.Record{"requirement_text": list[0].String("requirement_text")},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := updated.String("requirement_text"); got != text {
		t.Errorf("expected %q after edit, got %q", text, got)
	}
}

func TestNews_ImageLifecycle(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := c.Submit(ctx, portalclient.Submission{
		Kind:      models.KindNews,
		Multipart: true,
		Payload: models.Record{
			"title": "Graduation", "date": "2025-06-01", "body": "Congrats",
			"is_active": "true", "display_order": "2",
		},
		File: &portalclient.File{Name: "grad.png", ContentType: "image/png", Data: strings.NewReader("png-bytes")},
	})
	if err != nil {
		t.Fatalf("create news: %v", err)
	}
	img := created.String("image")
	if !strings.HasPrefix(img, "/media/news/") || !strings.HasSuffix(img, "-grad.png") {
		t.Errorf("unexpected image url %q", img)
	}
	if created.Has("image_path") {
		t.Error("storage path must not be exposed")
	}
	if n, _ := created.Int("display_order"); n != 2 {
		t.Errorf("expected display_order 2, got %d", n)
	}
	if e.images.count() != 1 {
		t.Fatalf("expected 1 stored image, got %d", e.images.count())
	}

	replaced, err := c.Submit(ctx, portalclient.Submission{
		Kind:      models.KindNews,
		ID:        created.ID(),
		Multipart: true,
		Payload:   models.Record{"title": "Graduation 2025"},
		File:      &portalclient.File{Name: "new.jpg", ContentType: "image/jpeg", Data: strings.NewReader("jpg")},
	})
	if err != nil {
		t.Fatalf("replace image: %v", err)
	}
	if replaced.String("image") == img || e.images.count() != 1 {
		t.Errorf("old image should be replaced, got %q with %d stored", replaced.String("image"), e.images.count())
	}

	removed, err := c.Submit(ctx, portalclient.Submission{
		Kind:      models.KindNews,
		ID:        created.ID(),
		Multipart: true,
		Payload:   models.Record{"remove_image": "true"},
	})
	if err != nil {
		t.Fatalf("remove image: %v", err)
	}
	if removed.Has("image") || e.images.count() != 0 {
		t.Errorf("expected image removed, got %v with %d stored", removed["image"], e.images.count())
	}
	if removed.String("title") != "Graduation 2025" {
		t.Errorf("title should be kept, got %q", removed.String("title"))
	}
}

func TestNews_RejectsNonImage(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := c.Submit(ctx, portalclient.Submission{
		Kind:      models.KindNews,
		Multipart: true,
		Payload:   models.Record{"title": "T", "date": "2025-01-01", "body": "B"},
		File:      &portalclient.File{Name: "notes.txt", ContentType: "text/plain", Data: strings.NewReader("hi")},
	})
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
	if e.images.count() != 0 {
		t.Error("nothing should be stored")
	}
}

func TestUpdate_PostNeedsMethodOverride(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	note := e.fx.CreateRecord(ctx, models.KindNotes, models.Record{"title": "A", "note_text": "B"})

	r := chi.NewRouter()
	r.Post("/api/admin/{kind}/{id}/", e.h.Update)
	path := fmt.Sprintf("/api/admin/admission-notes/%d/", note.ID())

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, path, map[string]any{"note_text": "plain post"}))
	rec.AssertStatus(t, http.StatusMethodNotAllowed)

	req := testutil.NewJSONRequest(http.MethodPost, path, map[string]any{"note_text": "updated"})
	req.Header.Set("X-HTTP-Method-Override", "PUT")
	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	body := rec.JSON(t)
	got, _ := body["note"].(map[string]any)
	if got["note_text"] != "updated" {
		t.Errorf("expected note_text updated, got %v", got["note_text"])
	}
	if body["message"] != "Admission note updated successfully" {
		t.Errorf("unexpected message %v", body["message"])
	}
}

func TestUnknownKind(t *testing.T) {
	e := newEnv(t)
	c := e.staffClient(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := c.List(ctx, models.Kind("downloads"))
	if statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
