// Package dbtest provides a migrated sqlite database and seed helpers for
// tests of packages that talk to the store.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/iliyamo/game-catalog/internal/database"
)

// New opens a fresh sqlite database in a temporary directory, applies all
// migrations and closes it when the test finishes.
func New(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedCategory inserts a category and returns its id.
func SeedCategory(t testing.TB, db *sql.DB, name string) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO categories (name, description) VALUES (?, ?)`, name, name+" games")
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return lastID(t, res)
}

// SeedGame inserts a game released on the given YYYY-MM-DD date.
func SeedGame(t testing.TB, db *sql.DB, categoryID uint64, title, released string) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO games (category_id, title, description, download_link, release_date)
		VALUES (?, ?, ?, ?, ?)`,
		categoryID, title, "About "+title, "https://example.com/"+title, released)
	if err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return lastID(t, res)
}

// SeedComment inserts a comment created at the given time.
func SeedComment(t testing.TB, db *sql.DB, gameID uint64, nickname string, at time.Time) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO comments (game_id, nickname, email, password_hash, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		gameID, nickname, nickname+"@example.com", "x", "hello from "+nickname,
		at.UTC().Format("2006-01-02 15:04:05.000000"))
	if err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return lastID(t, res)
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func lastID(t testing.TB, res sql.Result) uint64 {
	t.Helper()
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return uint64(id)
}
