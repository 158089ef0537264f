package entity

import (
	"time"
)

// Role is the coarse permission tier attached to a user account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// UserStatus is the account lifecycle state, distinct from session status.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// Valid reports whether s is one of the known account states.
func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserSuspended:
		return true
	}
	return false
}

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in HashedPassword.
// Username and email are globally unique.
type User struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	Role           Role
	Status         UserStatus
	IsVerified     bool
	CreatedAt      time.Time

	// Profile is the 1:1 profile record, populated by repository reads.
	Profile *Profile
}
