package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/game-catalog/internal/model"
)

const gameColumns = `id, category_id, title, description, min_requirements, max_requirements,
	cover_image, trailer_url, download_link, release_date`

// newestFirst orders games by release date, newest first; ties break on
// the most recently inserted row so listings are stable.
const newestFirst = "release_date DESC, id DESC"

// GameRepo provides methods to create, query and delete games.
type GameRepo struct {
	db DBTX // db is the connection pool, or a transaction when bound to one
}

// NewGameRepo constructs a GameRepo with the given DB handle.
func NewGameRepo(db DBTX) *GameRepo {
	return &GameRepo{db: db}
}

// GameFilter narrows admin game listings.  Zero values disable a filter.
// Year and Month implement a date hierarchy over release_date; Month is
// ignored without Year.
type GameFilter struct {
	Query      string // matches title or description
	CategoryID uint64
	Year       int
	Month      int
	Page       int
	PageSize   int
}

func scanGame(row interface{ Scan(...any) error }) (*model.Game, error) {
	g := new(model.Game)
	err := row.Scan(&g.ID, &g.CategoryID, &g.Title, &g.Description, &g.MinRequirements,
		&g.MaxRequirements, &g.CoverImage, &g.TrailerURL, &g.DownloadLink, dbTime{&g.ReleaseDate})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GameRepo) query(ctx context.Context, qb sq.SelectBuilder) ([]*model.Game, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new game.  The category must exist; ErrCategoryNotFound
// is returned otherwise.
func (r *GameRepo) Create(ctx context.Context, g *model.Game) error {
	if err := r.categoryExists(ctx, g.CategoryID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO games (category_id, title, description, min_requirements, max_requirements,
			cover_image, trailer_url, download_link, release_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.CategoryID, g.Title, g.Description, g.MinRequirements, g.MaxRequirements,
		g.CoverImage, g.TrailerURL, g.DownloadLink, formatDate(g.ReleaseDate))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetByID retrieves a game.  It returns ErrGameNotFound when no row is found.
func (r *GameRepo) GetByID(ctx context.Context, id uint64) (*model.Game, error) {
	g, err := scanGame(r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

// ListRecent returns at most limit games, newest release first.
func (r *GameRepo) ListRecent(ctx context.Context, limit int) ([]*model.Game, error) {
	return r.query(ctx, sq.Select(gameColumns).From("games").OrderBy(newestFirst).Limit(uint64(limit)))
}

// ListByCategory returns every game of a category, newest release first.
// It does not check that the category exists.
func (r *GameRepo) ListByCategory(ctx context.Context, categoryID uint64) ([]*model.Game, error) {
	return r.query(ctx, sq.Select(gameColumns).From("games").
		Where(sq.Eq{"category_id": categoryID}).
		OrderBy(newestFirst))
}

func (f GameFilter) conditions() sq.And {
	conds := sq.And{}
	if q := strings.TrimSpace(f.Query); q != "" {
		conds = append(conds, sq.Or{containsFold("title", q), containsFold("description", q)})
	}
	if f.CategoryID != 0 {
		conds = append(conds, sq.Eq{"category_id": f.CategoryID})
	}
	if f.Year > 0 {
		from := time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		if f.Month >= 1 && f.Month <= 12 {
			from = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
			to = from.AddDate(0, 1, 0)
		}
		conds = append(conds,
			sq.GtOrEq{"release_date": formatDate(from)},
			sq.Lt{"release_date": formatDate(to)})
	}
	return conds
}

// Search returns one page of games matching the filter plus the total
// number of matches.  Page is 1-based; PageSize defaults to 20.
func (r *GameRepo) Search(ctx context.Context, f GameFilter) ([]*model.Game, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	conds := f.conditions()

	countSQL, args, err := sq.Select("COUNT(*)").From("games").Where(conds).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	items, err := r.query(ctx, sq.Select(gameColumns).From("games").Where(conds).
		OrderBy(newestFirst).
		Limit(uint64(f.PageSize)).
		Offset(uint64((f.Page-1)*f.PageSize)))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update overwrites every editable field of a game except the cover.
func (r *GameRepo) Update(ctx context.Context, g *model.Game) error {
	if err := r.categoryExists(ctx, g.CategoryID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE games
		 SET category_id = ?, title = ?, description = ?, min_requirements = ?, max_requirements = ?,
		     trailer_url = ?, download_link = ?, release_date = ?
		 WHERE id = ?`,
		g.CategoryID, g.Title, g.Description, g.MinRequirements, g.MaxRequirements,
		g.TrailerURL, g.DownloadLink, formatDate(g.ReleaseDate), g.ID)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, g.ID)
}

// SetCover stores a new cover reference for a game.
func (r *GameRepo) SetCover(ctx context.Context, id uint64, ref string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE games SET cover_image = ? WHERE id = ?`, ref, id)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, id)
}

// Delete removes a game and its comments in one transaction.
func (r *GameRepo) Delete(ctx context.Context, id uint64) error {
	return runInTx(ctx, r.db, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE game_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrGameNotFound
		}
		return nil
	})
}

func (r *GameRepo) categoryExists(ctx context.Context, id uint64) error {
	var found uint64
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = ?`, id).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// checkAffected distinguishes "no such game" from "nothing changed", which
// MySQL also reports as zero affected rows.
func (r *GameRepo) checkAffected(ctx context.Context, res sql.Result, id uint64) error {
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err := r.GetByID(ctx, id)
	return err
}
