package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-catalog/internal/render"
	"github.com/iliyamo/game-catalog/internal/repository"
	"github.com/iliyamo/game-catalog/internal/service"
)

// CachePurger drops cached public pages after the catalog changes.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// PublicHandler serves the HTML pages visitors browse: the home page,
// category listings and game details with their comment thread.
type PublicHandler struct {
	Catalog  *service.Catalog
	Comments *service.Comments
	Cache    CachePurger
	Log      *slog.Logger
}

// NewPublicHandler wires the public pages.  cache may be nil.
func NewPublicHandler(catalog *service.Catalog, comments *service.Comments, cache CachePurger, log *slog.Logger) *PublicHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PublicHandler{Catalog: catalog, Comments: comments, Cache: cache, Log: log}
}

// pathID parses the :id parameter.  Anything that is not a positive
// integer cannot name a record, so callers answer 404.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *PublicHandler) notFound(c echo.Context, msg string) error {
	return c.Render(http.StatusNotFound, render.PageNotFound, render.ErrorPage{Status: http.StatusNotFound, Message: msg})
}

// fail renders the 404 page for missing records and the 500 page for
// everything else.
func (h *PublicHandler) fail(c echo.Context, err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return h.notFound(c, msg)
	}
	h.Log.Error("public page failed", "path", c.Request().URL.Path, "error", err)
	return c.Render(http.StatusInternalServerError, render.PageError, render.ErrorPage{Status: http.StatusInternalServerError})
}

// Home handles GET /: every category and the most recent games.
func (h *PublicHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		return h.fail(c, err, "")
	}
	games, err := h.Catalog.ListRecentGames(ctx, 0)
	if err != nil {
		return h.fail(c, err, "")
	}
	return c.Render(http.StatusOK, render.PageHome, render.HomePage{Categories: cats, Games: games})
}

// CategoryGames handles GET /category/:id/.
func (h *PublicHandler) CategoryGames(c echo.Context) error {
	const missing = "No category matches the given query."
	id, ok := pathID(c)
	if !ok {
		return h.notFound(c, missing)
	}
	ctx := c.Request().Context()
	cat, games, err := h.Catalog.ListGamesByCategory(ctx, id)
	if err != nil {
		return h.fail(c, err, missing)
	}
	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		return h.fail(c, err, missing)
	}
	return c.Render(http.StatusOK, render.PageCategory, render.CategoryPage{Categories: cats, Category: cat, Games: games})
}

const gameMissing = "No game matches the given query."

// GameDetail handles GET /game/:id/: the game, its comments newest first
// and an empty comment form.
func (h *PublicHandler) GameDetail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.notFound(c, gameMissing)
	}
	ctx := c.Request().Context()
	th, err := h.Comments.Thread(ctx, id)
	if err != nil {
		return h.fail(c, err, gameMissing)
	}
	return h.renderGame(c, http.StatusOK, th, service.CommentForm{}, nil)
}

// SubmitComment handles POST /game/:id/.  A valid comment is stored and
// the browser is redirected to the game page; an invalid one re-renders
// the page with 422, the submitted values and per-field errors.
func (h *PublicHandler) SubmitComment(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.notFound(c, gameMissing)
	}
	ctx := c.Request().Context()
	if _, err := h.Catalog.GetGame(ctx, id); err != nil {
		return h.fail(c, err, gameMissing)
	}
	var form service.CommentForm
	if err := c.Bind(&form); err != nil {
		return c.String(http.StatusBadRequest, "invalid form submission")
	}

	_, err := h.Comments.Submit(ctx, id, form)
	var ferrs service.FieldErrors
	switch {
	case err == nil:
		h.purge(ctx)
		return c.Redirect(http.StatusSeeOther, gamePath(id))
	case errors.As(err, &ferrs):
		th, terr := h.Comments.Thread(ctx, id)
		if terr != nil {
			return h.fail(c, terr, gameMissing)
		}
		return h.renderGame(c, http.StatusUnprocessableEntity, th, form.Redisplay(), ferrs)
	default:
		return h.fail(c, err, gameMissing)
	}
}

func (h *PublicHandler) renderGame(c echo.Context, status int, th *service.Thread, form service.CommentForm, errs service.FieldErrors) error {
	cats, err := h.Catalog.ListCategories(c.Request().Context())
	if err != nil {
		return h.fail(c, err, gameMissing)
	}
	return c.Render(status, render.PageGame, render.GamePage{
		Categories: cats,
		Game:       th.Game,
		Comments:   th.Comments,
		Form:       form,
		Errors:     errs,
	})
}

func (h *PublicHandler) purge(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Purge(ctx); err != nil {
		h.Log.Warn("purge page cache failed", "error", err)
	}
}

func gamePath(id uint64) string { return "/game/" + strconv.FormatUint(id, 10) + "/" }
