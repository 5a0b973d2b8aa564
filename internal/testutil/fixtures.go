package testutil

import (
	"context"
	"net/http"
	"testing"

	adminuserstore "github.com/dalemusser/ccbportal/internal/app/store/adminusers"
	contentstore "github.com/dalemusser/ccbportal/internal/app/store/content"
	"github.com/dalemusser/ccbportal/internal/app/system/authutil"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestPassword is the password given to every fixture admin user.
const TestPassword = "correct-horse-battery"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db      *mongo.Database
	t       *testing.T
	content *contentstore.Store
	users   *adminuserstore.Store
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{
		db:      db,
		t:       t,
		content: contentstore.New(db),
		users:   adminuserstore.New(db),
	}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateStaff creates an active staff user with TestPassword.
func (f *Fixtures) CreateStaff(ctx context.Context, username string) models.AdminUser {
	f.t.Helper()
	return f.createUser(ctx, models.AdminUser{
		Username:  username,
		Email:     username + "@ccb.test",
		FirstName: "Test",
		LastName:  "Staff",
		IsActive:  true,
		IsStaff:   true,
	})
}

// CreateNonStaff creates an active user without admin privileges.
func (f *Fixtures) CreateNonStaff(ctx context.Context, username string) models.AdminUser {
	f.t.Helper()
	return f.createUser(ctx, models.AdminUser{Username: username, IsActive: true})
}

// CreateInactiveStaff creates a deactivated staff user.
func (f *Fixtures) CreateInactiveStaff(ctx context.Context, username string) models.AdminUser {
	f.t.Helper()
	return f.createUser(ctx, models.AdminUser{Username: username, IsStaff: true})
}

func (f *Fixtures) createUser(ctx context.Context, u models.AdminUser) models.AdminUser {
	f.t.Helper()
	hash, err := authutil.HashPassword(TestPassword)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	u.PasswordHash = hash
	created, err := f.users.Create(ctx, u)
	if err != nil {
		f.t.Fatalf("create user %q: %v", u.Username, err)
	}
	return created
}

// CreateRecord coerces in through the kind's schema and stores it.
func (f *Fixtures) CreateRecord(ctx context.Context, k models.Kind, in models.Record) models.Record {
	f.t.Helper()
	doc, err := models.SchemaFor(k).BuildCreate(in)
	if err != nil {
		f.t.Fatalf("build %s: %v", k, err)
	}
	rec, err := f.content.Create(ctx, k, doc)
	if err != nil {
		f.t.Fatalf("create %s: %v", k, err)
	}
	return rec
}

// CreateDepartment creates an academic department.
func (f *Fixtures) CreateDepartment(ctx context.Context, name string) models.Record {
	f.t.Helper()
	return f.CreateRecord(ctx, models.KindDepartments, models.Record{"name": name})
}

// CreatePersonnel creates a faculty member in the given department.
func (f *Fixtures) CreatePersonnel(ctx context.Context, deptID int64, first, last string) models.Record {
	f.t.Helper()
	return f.CreateRecord(ctx, models.KindPersonnel, models.Record{
		"department_id": deptID,
		"first_name":    first,
		"last_name":     last,
		"title":         "Instructor",
	})
}
