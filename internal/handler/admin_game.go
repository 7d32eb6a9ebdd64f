package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-catalog/internal/model"
	"github.com/iliyamo/game-catalog/internal/repository"
	"github.com/iliyamo/game-catalog/internal/service"
	"github.com/iliyamo/game-catalog/internal/storage"
)

// maxCoverUpload bounds the multipart body of a cover upload.
const maxCoverUpload = 8 << 20

type gameReq struct {
	CategoryID      uint64  `json:"category_id" form:"category_id" validate:"required"`
	Title           string  `json:"title" form:"title" validate:"required,max=200"`
	Description     string  `json:"description" form:"description" validate:"required"`
	MinRequirements *string `json:"min_requirements" form:"min_requirements"`
	MaxRequirements *string `json:"max_requirements" form:"max_requirements"`
	TrailerURL      *string `json:"trailer_url" form:"trailer_url" validate:"omitempty,url,max=200"`
	DownloadLink    string  `json:"download_link" form:"download_link" validate:"required,url,max=200"`
	ReleaseDate     string  `json:"release_date" form:"release_date" validate:"required,datetime=2006-01-02"`
}

// gameResp is the admin JSON view of a game.
type gameResp struct {
	*model.Game
	ReleaseDate string `json:"release_date"`
	CoverURL    string `json:"cover_url,omitempty"`
}

func (h *AdminHandler) gameJSON(g *model.Game) gameResp {
	return gameResp{Game: g, ReleaseDate: g.ReleaseDay(), CoverURL: h.Store.URL(g.CoverImage)}
}

func bindGame(c echo.Context) (*model.Game, error) {
	var req gameReq
	if err := c.Bind(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.DownloadLink = strings.TrimSpace(req.DownloadLink)
	req.ReleaseDate = strings.TrimSpace(req.ReleaseDate)
	req.MinRequirements = optional(req.MinRequirements)
	req.MaxRequirements = optional(req.MaxRequirements)
	req.TrailerURL = optional(req.TrailerURL)
	if fields := service.ValidateStruct(req); fields != nil {
		return nil, validationFailed(c, fields)
	}
	released, err := time.Parse(model.DateLayout, req.ReleaseDate)
	if err != nil {
		return nil, validationFailed(c, service.FieldErrors{"release_date": "Enter a valid date (YYYY-MM-DD)."})
	}
	return &model.Game{
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Description:     req.Description,
		MinRequirements: req.MinRequirements,
		MaxRequirements: req.MaxRequirements,
		TrailerURL:      req.TrailerURL,
		DownloadLink:    req.DownloadLink,
		ReleaseDate:     released,
	}, nil
}

// gameWriteError reports an unknown category as a field error and
// delegates everything else to storeError.
func (h *AdminHandler) gameWriteError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return validationFailed(c, service.FieldErrors{"category_id": "Select a valid choice. That choice is not one of the available choices."})
	}
	return h.storeError(c, err)
}

// ListGames handles GET /admin/v1/games.  Supported query parameters: q,
// category_id, year, month (date hierarchy), page and page_size.
func (h *AdminHandler) ListGames(c echo.Context) error {
	atoi := func(name string) int {
		n, _ := strconv.Atoi(c.QueryParam(name))
		return n
	}
	catID, _ := strconv.ParseUint(c.QueryParam("category_id"), 10, 64)
	f := repository.GameFilter{
		Query:      c.QueryParam("q"),
		CategoryID: catID,
		Year:       atoi("year"),
		Month:      atoi("month"),
		Page:       atoi("page"),
		PageSize:   atoi("page_size"),
	}
	items, total, err := h.Games.Search(c.Request().Context(), f)
	if err != nil {
		return h.storeError(c, err)
	}
	out := make([]gameResp, 0, len(items))
	for _, g := range items {
		out = append(out, h.gameJSON(g))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "total": total})
}

// CreateGame handles POST /admin/v1/games.
func (h *AdminHandler) CreateGame(c echo.Context) error {
	g, err := bindGame(c)
	if g == nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Games.Create(ctx, g); err != nil {
		return h.gameWriteError(c, err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusCreated, h.gameJSON(g))
}

// GetGame handles GET /admin/v1/games/:id.
func (h *AdminHandler) GetGame(c echo.Context) error {
	id, err := adminID(c)
	if id == 0 {
		return err
	}
	g, err := h.Games.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(http.StatusOK, h.gameJSON(g))
}

// UpdateGame handles PUT /admin/v1/games/:id.  The cover is managed
// separately through the cover endpoint.
func (h *AdminHandler) UpdateGame(c echo.Context) error {
	id, err := adminID(c)
	if id == 0 {
		return err
	}
	g, err := bindGame(c)
	if g == nil {
		return err
	}
	g.ID = id
	ctx := c.Request().Context()
	if err := h.Games.Update(ctx, g); err != nil {
		return h.gameWriteError(c, err)
	}
	updated, err := h.Games.GetByID(ctx, id)
	if err != nil {
		return h.storeError(c, err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusOK, h.gameJSON(updated))
}

// DeleteGame handles DELETE /admin/v1/games/:id.  Comments go with the
// game; the stored cover is removed afterwards on a best-effort basis.
func (h *AdminHandler) DeleteGame(c echo.Context) error {
	id, err := adminID(c)
	if id == 0 {
		return err
	}
	ctx := c.Request().Context()
	g, err := h.Games.GetByID(ctx, id)
	if err != nil {
		return h.storeError(c, err)
	}
	if err := h.Games.Delete(ctx, id); err != nil {
		return h.storeError(c, err)
	}
	h.dropCover(c, g.CoverImage)
	h.purge(ctx)
	return c.NoContent(http.StatusNoContent)
}

// UploadCover handles POST /admin/v1/games/:id/cover with a multipart
// "image" field.  The image is resized, stored under a fresh key and the
// previous cover is deleted.
func (h *AdminHandler) UploadCover(c echo.Context) error {
	id, err := adminID(c)
	if id == 0 {
		return err
	}
	ctx := c.Request().Context()
	g, err := h.Games.GetByID(ctx, id)
	if err != nil {
		return h.storeError(c, err)
	}

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxCoverUpload)
	fh, err := c.FormFile("image")
	if err != nil {
		return validationFailed(c, service.FieldErrors{"image": "This field is required."})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read upload"})
	}
	defer f.Close()

	img, err := storage.ProcessCover(f)
	if err != nil {
		return validationFailed(c, service.FieldErrors{"image": "Upload a valid image. The file you uploaded was either not an image or a corrupted image."})
	}
	key := storage.CoverKey()
	if err := h.Store.Save(ctx, key, bytes.NewReader(img), "image/jpeg"); err != nil {
		h.Log.Error("store cover failed", "game_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	if err := h.Games.SetCover(ctx, id, key); err != nil {
		_ = h.Store.Delete(ctx, key)
		return h.storeError(c, err)
	}
	h.dropCover(c, g.CoverImage)
	h.purge(ctx)

	g.CoverImage = key
	return c.JSON(http.StatusOK, h.gameJSON(g))
}

func (h *AdminHandler) dropCover(c echo.Context, ref string) {
	if ref == "" || storage.IsExternal(ref) {
		return
	}
	if err := h.Store.Delete(c.Request().Context(), ref); err != nil {
		h.Log.Warn("delete old cover failed", "ref", ref, "error", err)
	}
}
