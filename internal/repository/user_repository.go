package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/game-catalog/internal/model"
	"github.com/iliyamo/game-catalog/internal/utils"
)

// AdminUserRepo stores administrative accounts.
type AdminUserRepo struct{ DB *sql.DB }

func NewAdminUserRepo(db *sql.DB) *AdminUserRepo { return &AdminUserRepo{DB: db} }

// Create hashes the password and inserts the user, returning its ID.
// A taken username yields ErrConflict.
func (r *AdminUserRepo) Create(ctx context.Context, username, password string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	if _, err := r.GetByUsername(ctx, username); err == nil {
		return 0, ErrConflict
	} else if !errors.Is(err, ErrUserNotFound) {
		return 0, err
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admin_users (username, password_hash, created_at) VALUES (?,?,?)",
		username, hash, formatTimestamp(time.Now()))
	if err != nil {
		// lost a race with a concurrent insert: MySQL 1062 / sqlite UNIQUE constraint
		if msg := strings.ToLower(err.Error()); strings.Contains(msg, "1062") || strings.Contains(msg, "unique") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by exact username.
func (r *AdminUserRepo) GetByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var u model.AdminUser
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM admin_users WHERE username = ? LIMIT 1",
		strings.TrimSpace(username)).Scan(&u.ID, &u.Username, &u.PasswordHash, dbTime{&u.CreatedAt})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
