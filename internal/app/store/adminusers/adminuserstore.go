// internal/app/store/adminusers/adminuserstore.go
package adminuserstore

import (
	"context"
	"errors"
	"strings"
	"time"

	counterstore "github.com/dalemusser/ccbportal/internal/app/store/counters"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound          = errors.New("admin user not found")
	ErrDuplicateUsername = errors.New("an admin user with this username already exists")
)

type Store struct {
	c   *mongo.Collection
	ids *counterstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admin_users"), ids: counterstore.New(db)}
}

// GetByUsername looks up a user case-insensitively.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	return s.findOne(ctx, bson.M{"username_ci": text.Fold(strings.TrimSpace(username))})
}

// GetByID returns a user by id.
func (s *Store) GetByID(ctx context.Context, id int64) (models.AdminUser, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.AdminUser, error) {
	var u models.AdminUser
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.AdminUser{}, ErrNotFound
		}
		return models.AdminUser{}, err
	}
	return u, nil
}

// Create inserts a new user. Username is required; username_ci and
// timestamps are derived.
func (s *Store) Create(ctx context.Context, u models.AdminUser) (models.AdminUser, error) {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return models.AdminUser{}, mongo.CommandError{Message: "username is required"}
	}
	id, err := s.ids.Next(ctx, "admin_users")
	if err != nil {
		return models.AdminUser{}, err
	}
	now := time.Now().UTC()
	u.ID = id
	u.UsernameCI = text.Fold(u.Username)
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AdminUser{}, ErrDuplicateUsername
		}
		return models.AdminUser{}, err
	}
	return u, nil
}

// Upsert creates the user, or updates profile fields, flags and password
// hash of an existing user with the same username. It reports whether a new
// user was created.
func (s *Store) Upsert(ctx context.Context, u models.AdminUser) (models.AdminUser, bool, error) {
	existing, err := s.GetByUsername(ctx, u.Username)
	if errors.Is(err, ErrNotFound) {
		created, err := s.Create(ctx, u)
		return created, err == nil, err
	}
	if err != nil {
		return models.AdminUser{}, false, err
	}

	set := bson.M{
		"is_active":    u.IsActive,
		"is_staff":     u.IsStaff,
		"is_superuser": u.IsSuperuser,
		"updated_at":   time.Now().UTC(),
	}
	if u.Email != "" {
		set["email"] = u.Email
	}
	if u.FirstName != "" {
		set["first_name"] = u.FirstName
	}
	if u.LastName != "" {
		set["last_name"] = u.LastName
	}
	if u.PasswordHash != "" {
		set["password_hash"] = u.PasswordHash
	}

	var out models.AdminUser
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": existing.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.AdminUser{}, false, err
	}
	return out, false, nil
}

// SetPassword replaces the password hash of the named user.
func (s *Store) SetPassword(ctx context.Context, username, hash string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"username_ci": text.Fold(strings.TrimSpace(username))},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful sign-in.
func (s *Store) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_login_at": time.Now().UTC()}})
	return err
}
