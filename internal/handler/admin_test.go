package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/game-catalog/internal/database/dbtest"
	"github.com/iliyamo/game-catalog/internal/repository"
)

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	_, err := repository.NewAdminUserRepo(s.db).Create(context.Background(), "dave", "s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/admin/v1/login", strings.NewReader(`{"username":"dave","password":"s3cret"}`),
		map[string]string{echo.HeaderContentType: echo.MIMEApplicationJSON})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Access.Token)
	return resp.Access.Token
}

func (s *testServer) api(t *testing.T, token, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := map[string]string{echo.HeaderAuthorization: "Bearer " + token}
	var r *strings.Reader
	if body != "" {
		h[echo.HeaderContentType] = echo.MIMEApplicationJSON
		r = strings.NewReader(body)
	} else {
		r = strings.NewReader("")
	}
	return s.do(t, method, target, r, h)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	rec := s.do(t, http.MethodPost, "/admin/v1/login", strings.NewReader(`{"username":"dave","password":"nope"}`),
		map[string]string{echo.HeaderContentType: echo.MIMEApplicationJSON})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/v1/login", strings.NewReader(`{"username":"ghost","password":"x"}`),
		map[string]string{echo.HeaderContentType: echo.MIMEApplicationJSON})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, s.get(t, "/admin/v1/site").Code)
}

func TestAdminSite(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	rec := s.api(t, token, http.MethodGet, "/admin/v1/site", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "DaveGames Admin", out["site_header"])
	assert.Equal(t, "DaveGames Admin Portal", out["site_title"])
}

func TestAdminCategoryCRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec := s.api(t, token, http.MethodPost, "/admin/v1/categories", `{"name":"  ","description":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"This field is required."`)

	rec = s.api(t, token, http.MethodPost, "/admin/v1/categories", `{"name":"Action","description":""}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "Action", out["name"])
	assert.Nil(t, out["description"])
	assert.Equal(t, 1, s.cache.n)

	rec = s.api(t, token, http.MethodPut, "/admin/v1/categories/1", `{"name":"Arcade","description":"Coins"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.api(t, token, http.MethodGet, "/admin/v1/categories?q=arc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Coins", items[0].(map[string]any)["description"])

	assert.Equal(t, http.StatusNotFound, s.api(t, token, http.MethodGet, "/admin/v1/categories/9", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.api(t, token, http.MethodGet, "/admin/v1/categories/x", "").Code)
}

func TestAdminDeleteCategoryCascades(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	action := dbtest.SeedCategory(t, s.db, "Action")
	other := dbtest.SeedCategory(t, s.db, "Other")
	for _, title := range []string{"A", "B", "C"} {
		g := dbtest.SeedGame(t, s.db, action, title, "2020-01-01")
		dbtest.SeedComment(t, s.db, g, "sam", commentAt)
	}
	kept := dbtest.SeedGame(t, s.db, other, "Kept", "2020-01-01")
	dbtest.SeedComment(t, s.db, kept, "kim", commentAt)

	rec := s.api(t, token, http.MethodDelete, "/admin/v1/categories/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, dbtest.Count(t, s.db, "categories"))
	assert.Equal(t, 1, dbtest.Count(t, s.db, "games"))
	assert.Equal(t, 1, dbtest.Count(t, s.db, "comments"))

	assert.Equal(t, http.StatusNotFound, s.get(t, "/category/1/").Code)
	assert.Equal(t, http.StatusNotFound, s.api(t, token, http.MethodDelete, "/admin/v1/categories/1", "").Code)
}

const gameJSON = `{"category_id":1,"title":"Beta","description":"Fun","download_link":"https://example.com/beta",
	"trailer_url":"","release_date":"2021-03-01","min_requirements":"4 GB RAM"}`

func TestAdminGameCRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	dbtest.SeedCategory(t, s.db, "Action")

	rec := s.api(t, token, http.MethodPost, "/admin/v1/games", gameJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "2021-03-01", out["release_date"])
	assert.Nil(t, out["trailer_url"])
	assert.Equal(t, "4 GB RAM", out["min_requirements"])

	bad := strings.Replace(gameJSON, `"category_id":1`, `"category_id":9`, 1)
	rec = s.api(t, token, http.MethodPost, "/admin/v1/games", bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "category_id")

	bad = strings.Replace(gameJSON, `"https://example.com/beta"`, `"not a url"`, 1)
	bad = strings.Replace(bad, `"2021-03-01"`, `"03/01/2021"`, 1)
	rec = s.api(t, token, http.MethodPost, "/admin/v1/games", bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "download_link")
	assert.Contains(t, fields, "release_date")

	upd := strings.Replace(gameJSON, `"Beta"`, `"Beta Remastered"`, 1)
	rec = s.api(t, token, http.MethodPut, "/admin/v1/games/1", upd)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Beta Remastered", decode(t, rec)["title"])

	rec = s.api(t, token, http.MethodGet, "/admin/v1/games?year=2021&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])
	rec = s.api(t, token, http.MethodGet, "/admin/v1/games?year=2021&month=4", "")
	assert.EqualValues(t, 0, decode(t, rec)["total"])

	dbtest.SeedComment(t, s.db, 1, "sam", commentAt)
	rec = s.api(t, token, http.MethodDelete, "/admin/v1/games/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, dbtest.Count(t, s.db, "comments"))
	assert.Equal(t, http.StatusNotFound, s.get(t, "/game/1/").Code)
}

func TestAdminUploadCover(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	dbtest.SeedGame(t, s.db, dbtest.SeedCategory(t, s.db, "Action"), "Beta", "2021-01-01")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1000, 1000))))
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := s.do(t, http.MethodPost, "/admin/v1/games/1/cover", &body, map[string]string{
		echo.HeaderAuthorization: "Bearer " + token,
		echo.HeaderContentType:   mw.FormDataContentType(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	ref := out["cover_image"].(string)
	assert.True(t, strings.HasPrefix(ref, "covers/"))
	assert.Equal(t, "/media/"+ref, out["cover_url"])

	_, err = os.Stat(filepath.Join(s.media, filepath.FromSlash(ref)))
	assert.NoError(t, err)

	served := s.get(t, "/media/"+ref)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Contains(t, s.get(t, "/game/1/").Body.String(), `src="/media/`+ref+`"`)
}

var commentAt = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
