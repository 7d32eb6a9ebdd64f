package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-catalog/internal/config"
	"github.com/iliyamo/game-catalog/internal/repository"
	"github.com/iliyamo/game-catalog/internal/service"
	"github.com/iliyamo/game-catalog/internal/storage"
)

// AdminHandler bundles the repositories behind the JSON admin API under
// /admin/v1.  Every write purges the public page cache.
type AdminHandler struct {
	Cfg        config.Config             // Cfg carries the JWT secret, token TTL and site titles
	Users      *repository.AdminUserRepo // Users authenticates logins
	Categories *repository.CategoryRepo  // Categories backs the category endpoints
	Games      *repository.GameRepo      // Games backs the game endpoints
	Store      storage.Store             // Store holds uploaded cover images
	Cache      CachePurger               // Cache is purged after every write; may be nil
	Log        *slog.Logger              // Log records unexpected store failures
}

// NewAdminHandler constructs an AdminHandler and panics on a missing
// repository or store.
func NewAdminHandler(cfg config.Config, users *repository.AdminUserRepo, cats *repository.CategoryRepo,
	games *repository.GameRepo, store storage.Store, cache CachePurger, log *slog.Logger) *AdminHandler {
	if users == nil || cats == nil || games == nil || store == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AdminHandler{Cfg: cfg, Users: users, Categories: cats, Games: games, Store: store, Cache: cache, Log: log}
}

func (h *AdminHandler) purge(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Purge(ctx); err != nil {
		h.Log.Warn("purge page cache failed", "error", err)
	}
}

// adminID parses the :id path parameter.  A zero id means the 400
// response has been written and its error is returned alongside.
func adminID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the ID from the URL
	if err != nil || id == 0 {                         // validate that the ID is a positive number
		return 0, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"}) // invalid ID error response
	}
	return id, nil
}

func validationFailed(c echo.Context, fields service.FieldErrors) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
}

// storeError maps repository errors to JSON responses.
func (h *AdminHandler) storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound): // category, game or user missing
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()}) // respond with not found
	case errors.Is(err, repository.ErrConflict): // duplicate key
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()}) // respond with conflict
	default: // anything else is unexpected
		h.Log.Error("admin store error", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"}) // generic database error
	}
}

// optional trims s and maps blank values to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
