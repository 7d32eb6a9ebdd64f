// Package router registers every HTTP route on an echo instance.
package router

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/game-catalog/internal/handler"
	"github.com/iliyamo/game-catalog/internal/middleware"
	"github.com/iliyamo/game-catalog/internal/utils"
)

// RegisterRoutes registers the routes that are neither public pages nor
// admin API: the health check and, when mediaRoot is set, the local media
// directory under mediaURL.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, mediaURL, mediaRoot string) {
	e.GET("/healthz", handler.Health(db))
	if mediaRoot != "" && mediaURL != "" {
		e.Static(mediaURL, mediaRoot)
	}
}

// RegisterPublic registers the HTML pages.  cache wraps the pages that
// are safe to cache; limit guards comment submission.  Paths without a
// trailing slash are redirected to the canonical form.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache, limit echo.MiddlewareFunc) {
	e.Pre(echomw.AddTrailingSlashWithConfig(echomw.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper:      skipSlashRedirect,
	}))

	e.GET("/", p.Home, cache)
	e.GET("/category/:id/", p.CategoryGames, cache)
	e.GET("/game/:id/", p.GameDetail, cache)
	e.POST("/game/:id/", p.SubmitComment, limit)
}

// skipSlashRedirect limits the slash redirect to GET and HEAD requests
// for the public page paths.
func skipSlashRedirect(c echo.Context) bool {
	r := c.Request()
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return true
	}
	path := r.URL.Path
	return !(strings.HasPrefix(path, "/category/") || strings.HasPrefix(path, "/game/"))
}

// RegisterAdmin registers the JSON admin API under /admin/v1.  Login is
// rate limited; everything else needs an ADMIN access token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	e.POST("/admin/v1/login", a.Login, limit)

	g := e.Group("/admin/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)
	g.GET("/site", a.Site)

	// ---- Categories ----
	g.GET("/categories", a.ListCategories)
	g.POST("/categories", a.CreateCategory)
	g.GET("/categories/:id", a.GetCategory)
	g.PUT("/categories/:id", a.UpdateCategory)
	g.DELETE("/categories/:id", a.DeleteCategory)

	// ---- Games ----
	g.GET("/games", a.ListGames)
	g.POST("/games", a.CreateGame)
	g.GET("/games/:id", a.GetGame)
	g.PUT("/games/:id", a.UpdateGame)
	g.DELETE("/games/:id", a.DeleteGame)
	g.POST("/games/:id/cover", a.UploadCover)
}
