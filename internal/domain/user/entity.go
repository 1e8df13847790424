package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches user_role enum)
type Role string

const (
	RoleArtist Role = "artist"
	RoleVenue  Role = "venue"
	RoleAdmin  Role = "admin"
)

// User represents a user account (matches users table)
type User struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Role         Role           `db:"role"`
	DisplayName  string         `db:"display_name"`
	City         sql.NullString `db:"city"`

	// Login tracking
	LastLoginAt sql.NullTime   `db:"last_login_at"`
	LastLoginIP sql.NullString `db:"last_login_ip"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsArtist returns true if the user performs
func (u *User) IsArtist() bool {
	return u.Role == RoleArtist
}

// IsVenue returns true if the user books performers
func (u *User) IsVenue() bool {
	return u.Role == RoleVenue
}

// ValidRoles returns list of valid roles for registration
func ValidRoles() []Role {
	return []Role{RoleArtist, RoleVenue}
}
