package handler_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/game-catalog/internal/config"
	"github.com/iliyamo/game-catalog/internal/database/dbtest"
	"github.com/iliyamo/game-catalog/internal/handler"
	"github.com/iliyamo/game-catalog/internal/render"
	"github.com/iliyamo/game-catalog/internal/repository"
	"github.com/iliyamo/game-catalog/internal/router"
	"github.com/iliyamo/game-catalog/internal/service"
	"github.com/iliyamo/game-catalog/internal/storage"
)

const testSecret = "handler-test-secret"

type purgeCounter struct{ n int }

func (p *purgeCounter) Purge(context.Context) error {
	p.n++
	return nil
}

type testServer struct {
	e     *echo.Echo
	db    *sql.DB
	cache *purgeCounter
	media string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.New(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	media := t.TempDir()
	store := storage.NewLocalStore(media, "/media")

	cats := repository.NewCategoryRepo(db)
	games := repository.NewGameRepo(db)
	comments := repository.NewCommentRepo(db)
	users := repository.NewAdminUserRepo(db)

	cfg := config.Config{
		JWTSecret:    testSecret,
		AccessTTLMin: 5,
		BcryptCost:   bcrypt.MinCost,
		Site:         config.SiteConfig{Header: "DaveGames Admin", Title: "DaveGames Admin Portal", IndexTitle: "Welcome"},
	}
	cache := &purgeCounter{}

	catalog := service.NewCatalog(cats, games, 0)
	commentSvc := service.NewComments(games, comments, bcrypt.MinCost, service.WithLogger(log))

	rdr, err := render.New(store.URL)
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = rdr
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	router.RegisterRoutes(e, db, "/media", media)
	router.RegisterPublic(e, handler.NewPublicHandler(catalog, commentSvc, cache, log), pass, pass)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg, users, cats, games, store, cache, log), testSecret, pass)
	return &testServer{e: e, db: db, cache: cache, media: media}
}

func (s *testServer) do(t *testing.T, method, target string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodGet, target, nil, nil)
}

func (s *testServer) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, target, strings.NewReader(form.Encode()),
		map[string]string{echo.HeaderContentType: echo.MIMEApplicationForm})
}
