package handler // handler package also contains the admin category handlers

import (
	"net/http" // http provides status code constants
	"strings"  // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/iliyamo/game-catalog/internal/model"      // model holds the Category struct
	"github.com/iliyamo/game-catalog/internal/repository" // repository performs the SQL
	"github.com/iliyamo/game-catalog/internal/service"    // service validates request structs
)

// categoryReq is the JSON or form body accepted by create and update.
type categoryReq struct {
	Name        string  `json:"name" form:"name" validate:"required,max=100"` // Name is required, at most 100 characters
	Description *string `json:"description" form:"description"`                // Description is optional free text
}

// bindCategory binds and validates a category body.  On failure the error
// response has already been written and the returned category is nil.
func bindCategory(c echo.Context) (*model.Category, error) {
	var req categoryReq                     // holder for the incoming payload
	if err := c.Bind(&req); err != nil { // attempt to bind the request body
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"}) // malformed JSON or form
	}
	req.Name = strings.TrimSpace(req.Name)              // trim spaces around the name
	req.Description = optional(req.Description)         // blank descriptions become NULL
	if fields := service.ValidateStruct(req); fields != nil { // run the validate tags
		return nil, validationFailed(c, fields) // 400 with per-field messages
	}
	return &model.Category{Name: req.Name, Description: req.Description}, nil // validated model ready for the repository
}

// ListCategories handles GET /admin/v1/categories.  ?q= searches names,
// ?name= filters on an exact name.
func (h *AdminHandler) ListCategories(c echo.Context) error { // begin ListCategories handler
	items, err := h.Categories.Search(c.Request().Context(), repository.CategoryFilter{
		Query: c.QueryParam("q"),    // substring search on the name
		Name:  c.QueryParam("name"), // exact name filter
	})
	if err != nil { // query failed
		return h.storeError(c, err) // map to a JSON error
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items}) // return the matching categories
}

// CreateCategory handles POST /admin/v1/categories.
func (h *AdminHandler) CreateCategory(c echo.Context) error { // begin CreateCategory handler
	cat, err := bindCategory(c) // bind and validate the body
	if cat == nil {             // response already written
		return err
	}
	ctx := c.Request().Context()
	if err := h.Categories.Create(ctx, cat); err != nil { // insert the row
		return h.storeError(c, err) // respond with a database error
	}
	h.purge(ctx)                               // public pages list categories
	return c.JSON(http.StatusCreated, cat) // return 201 and the created category
}

// GetCategory handles GET /admin/v1/categories/:id.
func (h *AdminHandler) GetCategory(c echo.Context) error { // begin GetCategory handler
	id, err := adminID(c) // parse the category ID from the URL
	if id == 0 {          // invalid id, 400 already written
		return err
	}
	cat, err := h.Categories.GetByID(c.Request().Context(), id) // load the category
	if err != nil {                                              // not found or database error
		return h.storeError(c, err)
	}
	return c.JSON(http.StatusOK, cat) // return the category
}

// UpdateCategory handles PUT /admin/v1/categories/:id.
func (h *AdminHandler) UpdateCategory(c echo.Context) error { // begin UpdateCategory handler
	id, err := adminID(c) // parse the category ID from the URL
	if id == 0 {          // invalid id, 400 already written
		return err
	}
	cat, err := bindCategory(c) // bind and validate the body
	if cat == nil {             // response already written
		return err
	}
	cat.ID = id // the path decides which row is updated
	ctx := c.Request().Context()
	if err := h.Categories.Update(ctx, cat); err != nil { // overwrite name and description
		return h.storeError(c, err) // 404 when the category does not exist
	}
	h.purge(ctx)                          // cached pages show the old name
	return c.JSON(http.StatusOK, cat) // return the updated category
}

// DeleteCategory handles DELETE /admin/v1/categories/:id.  The category's
// games and their comments are removed with it.
func (h *AdminHandler) DeleteCategory(c echo.Context) error { // begin DeleteCategory handler
	id, err := adminID(c) // parse the category ID from the URL
	if id == 0 {          // invalid id, 400 already written
		return err
	}
	ctx := c.Request().Context()
	if err := h.Categories.Delete(ctx, id); err != nil { // cascade delete in one transaction
		return h.storeError(c, err) // 404 when the category does not exist
	}
	h.purge(ctx)                            // drop cached pages that listed it
	return c.NoContent(http.StatusNoContent) // 204 on success
}
