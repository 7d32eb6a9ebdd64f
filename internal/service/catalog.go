// Package service holds the read-side catalog queries and the comment
// submission workflow.  It depends on small store interfaces rather than
// on concrete repositories.
package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/game-catalog/internal/model"
)

// DefaultRecentLimit is the number of games shown on the home page.
const DefaultRecentLimit = 6

// CategoryStore is the read access the catalog needs to categories.
type CategoryStore interface {
	ListAll(ctx context.Context) ([]*model.Category, error)
	GetByID(ctx context.Context, id uint64) (*model.Category, error)
}

// GameStore is the read access the catalog needs to games.
type GameStore interface {
	ListRecent(ctx context.Context, limit int) ([]*model.Game, error)
	ListByCategory(ctx context.Context, categoryID uint64) ([]*model.Game, error)
	GetByID(ctx context.Context, id uint64) (*model.Game, error)
}

// Catalog answers read-only questions about categories and games.
type Catalog struct {
	categories  CategoryStore
	games       GameStore
	recentLimit int
}

// NewCatalog builds a Catalog.  A non-positive recentLimit selects
// DefaultRecentLimit.
func NewCatalog(categories CategoryStore, games GameStore, recentLimit int) *Catalog {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Catalog{categories: categories, games: games, recentLimit: recentLimit}
}

// ListCategories returns every category in insertion order.
func (s *Catalog) ListCategories(ctx context.Context) ([]*model.Category, error) {
	out, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// ListRecentGames returns at most limit games, newest release first.  A
// non-positive limit uses the configured default.
func (s *Catalog) ListRecentGames(ctx context.Context, limit int) ([]*model.Game, error) {
	if limit <= 0 {
		limit = s.recentLimit
	}
	out, err := s.games.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent games: %w", err)
	}
	return out, nil
}

// ListGamesByCategory returns a category and its games, newest release
// first.  The error wraps repository.ErrNotFound when the category does
// not exist.
func (s *Catalog) ListGamesByCategory(ctx context.Context, categoryID uint64) (*model.Category, []*model.Game, error) {
	cat, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("get category %d: %w", categoryID, err)
	}
	games, err := s.games.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("list games of category %d: %w", categoryID, err)
	}
	return cat, games, nil
}

// GetGame returns a single game; the error wraps repository.ErrNotFound
// when it does not exist.
func (s *Catalog) GetGame(ctx context.Context, gameID uint64) (*model.Game, error) {
	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game %d: %w", gameID, err)
	}
	return g, nil
}
