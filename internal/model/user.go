package model

import "time"

// AdminUser is an account allowed to use the administrative API.  Only the
// bcrypt hash of the password is stored.
type AdminUser struct {
	ID           uint64    // admin_users.id
	Username     string    // admin_users.username
	PasswordHash string    // admin_users.password_hash
	CreatedAt    time.Time // admin_users.created_at
}
