package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/game-catalog/internal/model"
)

// CommentRepo persists comments.  Comments are append-only: there is no
// update, and they disappear only through the game cascade.
type CommentRepo struct {
	db *sql.DB
}

// NewCommentRepo constructs a CommentRepo with the given DB handle.
func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// Create inserts a comment and sets its ID.  CreatedAt must already be set.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (game_id, nickname, email, password_hash, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.GameID, c.Nickname, c.Email, c.PasswordHash, c.Text, formatTimestamp(c.CreatedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ListByGame returns the comments of a game, newest first.
func (r *CommentRepo) ListByGame(ctx context.Context, gameID uint64) ([]*model.Comment, error) {
	const q = `SELECT id, game_id, nickname, email, password_hash, text, created_at
	           FROM comments WHERE game_id = ?
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Comment{}
	for rows.Next() {
		c := new(model.Comment)
		if err := rows.Scan(&c.ID, &c.GameID, &c.Nickname, &c.Email, &c.PasswordHash, &c.Text, dbTime{&c.CreatedAt}); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
