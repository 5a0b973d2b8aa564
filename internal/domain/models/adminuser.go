// internal/domain/models/adminuser.go
package models

import "time"

// AdminUser is a staff account allowed to sign in to the admin API.
type AdminUser struct {
	ID           int64  `bson:"_id" json:"id"`
	Username     string `bson:"username" json:"username"`
	UsernameCI   string `bson:"username_ci" json:"-"` // folded for case-insensitive lookup
	Email        string `bson:"email" json:"email"`
	FirstName    string `bson:"first_name" json:"first_name"`
	LastName     string `bson:"last_name" json:"last_name"`
	PasswordHash string `bson:"password_hash" json:"-"`

	IsActive    bool `bson:"is_active" json:"is_active"`
	IsStaff     bool `bson:"is_staff" json:"is_staff"`
	IsSuperuser bool `bson:"is_superuser" json:"is_superuser"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}

// CanAdmin reports whether the account may use the admin API.
func (u AdminUser) CanAdmin() bool {
	return u.IsActive && u.IsStaff
}
