// Package repository contains data access logic separated from HTTP handlers.
// This file holds the Category repository: public listing, admin search and
// the cascading delete that removes a category with its games and comments.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/game-catalog/internal/model"
)

const categoryColumns = "id, name, description"

// CategoryRepo encapsulates all database queries related to categories.
type CategoryRepo struct {
	db DBTX // db is the connection pool, or a transaction when bound to one
}

// NewCategoryRepo constructs a CategoryRepo with the provided DB handle.
// Passing a *sql.Tx makes every call part of that transaction.
func NewCategoryRepo(db DBTX) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// CategoryFilter narrows admin category listings.  Query matches the
// name case-insensitively; Name must match exactly.
type CategoryFilter struct {
	Query string
	Name  string
}

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	c := new(model.Category)
	if err := row.Scan(&c.ID, &c.Name, &c.Description); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new category and sets its ID.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, description) VALUES (?, ?)`, c.Name, c.Description)
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

// GetByID fetches a category.  It returns ErrCategoryNotFound if no row is found.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListAll returns every category in insertion order.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]*model.Category, error) {
	return r.Search(ctx, CategoryFilter{})
}

// Search lists categories matching the filter ordered by id.
func (r *CategoryRepo) Search(ctx context.Context, f CategoryFilter) ([]*model.Category, error) {
	qb := sq.Select(categoryColumns).From("categories").OrderBy("id")
	if q := strings.TrimSpace(f.Query); q != "" {
		qb = qb.Where(containsFold("name", q))
	}
	if f.Name != "" {
		qb = qb.Where(sq.Eq{"name": f.Name})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites name and description.  Returns ErrCategoryNotFound when
// no row matches.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`, c.Name, c.Description, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows when values are unchanged.
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a category together with its games and their comments.
// Children are deleted explicitly inside one transaction so the cascade
// does not depend on the store enforcing foreign key actions.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	return runInTx(ctx, r.db, func(tx DBTX) error {
		var exists uint64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCategoryNotFound
			}
			return err
		}
		// Delete comments of games in this category
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM comments WHERE game_id IN (SELECT id FROM games WHERE category_id = ?)`, id); err != nil {
			return err
		}
		// Delete the games themselves
		if _, err := tx.ExecContext(ctx, `DELETE FROM games WHERE category_id = ?`, id); err != nil {
			return err
		}
		// Finally delete the category
		_, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		return err
	})
}
