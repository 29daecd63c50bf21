package model

import (
	"time"

	"github.com/stayora/hotel-booking-backend/internal/status"
)

// Role names stored in users.role and carried in the JWT "role" claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleManager  = "MANAGER"
	RoleAdmin    = "ADMIN"
)

// User represents a row in the `users` table. Accounts are never
// hard-deleted: "delete" flips Active to inactive and keeps the row, so
// email uniqueness spans deleted accounts too.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of RoleCustomer, RoleManager, RoleAdmin.
//  Active       – canonical account status (see internal/status).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64        // users.id
	Name         string        // users.name
	Email        string        // users.email
	PasswordHash string        // users.password_hash
	Role         string        // users.role
	Active       status.Status // users.active (normalized on read)
	CreatedAt    time.Time     // users.created_at
	UpdatedAt    time.Time     // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the issued token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
