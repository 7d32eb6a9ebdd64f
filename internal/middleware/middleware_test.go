package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/game-catalog/internal/config"
	"github.com/iliyamo/game-catalog/internal/utils"
)

const secret = "test-secret"

func protected(e *echo.Echo) {
	g := e.Group("/admin", JWTAuth(secret), RequireRole(utils.RoleAdmin))
	g.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(CtxUserID).(string))
	})
}

func doGet(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	protected(e)

	admin, err := utils.NewAccessToken(secret, 42, utils.RoleAdmin, 5)
	require.NoError(t, err)
	rec := doGet(e, "/admin/whoami", admin.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doGet(e, "/admin/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(e, "/admin/whoami", "garbage").Code)

	other, err := utils.NewAccessToken("other-secret", 42, utils.RoleAdmin, 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(e, "/admin/whoami", other.Token).Code)

	expired, err := utils.NewAccessToken(secret, 42, utils.RoleAdmin, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(e, "/admin/whoami", expired.Token).Code)

	viewer, err := utils.NewAccessToken(secret, 7, "VIEWER", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doGet(e, "/admin/whoami", viewer.Token).Code)
}

func TestTokenBucket_LocalFallback(t *testing.T) {
	e := echo.New()
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: time.Hour, KeyStrategy: "ip_route", Prefix: "test:rl",
	}
	e.POST("/game/:id/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil))))

	post := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/game/1/", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, post("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, post("10.0.0.1").Code)
	rec := post("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusNoContent, post("10.0.0.2").Code)
}

func TestLocalLimiters_SweepsIdleFullBuckets(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Minute}
	l := newLocalLimiters(cfg)
	t0 := time.Now()

	drained := l.get("drained", t0)
	require.True(t, drained.AllowN(t0, 2))
	l.get("idle", t0)
	assert.Equal(t, 2, l.size())

	later := t0.Add(2 * time.Minute)
	l.get("fresh", later)
	assert.Equal(t, 2, l.size())
	assert.Contains(t, l.m, "drained", "a bucket that has not refilled keeps its state")
	assert.Contains(t, l.m, "fresh")
	assert.NotContains(t, l.m, "idle")

	assert.Same(t, drained, l.get("drained", later))
	assert.False(t, drained.AllowN(later, 1))
}

func TestTokenBucket_Disabled(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		NewTokenBucket(config.RateLimitConfig{}, nil, nil))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doGet(e, "/", "").Code)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"text/html; charset=UTF-8"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte("<h1>hi</h1>"))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "text/html; charset=UTF-8", gotHdr.Get("Content-Type"))
	assert.Equal(t, "<h1>hi</h1>", string(body))

	_, _, _, ok = decodePayload([]byte{1, 2})
	assert.False(t, ok)
}

func TestResponseCache_KeyUsesPath(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Prefix: "p", KeyStrategy: "route_query"}, nil)
	e := echo.New()
	key := func(target string) string {
		return rc.key(e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder()))
	}
	assert.NotEqual(t, key("/game/1/"), key("/game/2/"))
	assert.Equal(t, key("/game/1/"), key("/game/1/"))
	assert.NotEqual(t, key("/?a=1"), key("/?a=2"))
	assert.Regexp(t, `^p:[0-9a-f]{40}$`, key("/"))
}

func TestResponseCache_DisabledIsPassThrough(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)
	e := echo.New()
	e.Use(rc.Middleware())
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "page") })

	rec := doGet(e, "/", "")
	assert.Equal(t, "page", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NoError(t, rc.Purge(context.Background()))
}

func TestCaptureWriter_Limit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.truncated())
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.truncated())
	assert.Equal(t, "abcdef", rec.Body.String())
	assert.True(t, bytes.Equal([]byte("abc"), cw.buf.Bytes()))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	doGet(e, "/healthz", "")
	assert.Contains(t, buf.String(), `"uri":"/healthz"`)
	assert.Contains(t, buf.String(), `"status":200`)
}
