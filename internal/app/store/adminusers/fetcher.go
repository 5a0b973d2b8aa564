package adminuserstore

import (
	"context"

	"github.com/dalemusser/ccbportal/internal/app/system/auth"
	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	store *Store
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{store: New(db)}
}

// FetchUser returns nil if the user is not found, inactive, no longer staff,
// or if any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, userID int64) *auth.SessionUser {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := f.store.GetByID(ctx, userID)
	if err != nil || !u.CanAdmin() {
		return nil
	}
	return SessionUser(u)
}

// SessionUser converts a stored user to its session form.
func SessionUser(u models.AdminUser) *auth.SessionUser {
	return &auth.SessionUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}
