package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/skycomfort-server/internal/config"
	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/service"
)

type stubAuth map[string]*model.User

func (s stubAuth) Authenticate(_ context.Context, raw string) (*model.User, error) {
	if raw == "disabled" {
		return nil, service.ErrAccountDisabled
	}
	if u, ok := s[raw]; ok {
		return u, nil
	}
	return nil, service.ErrInvalidToken
}

func serve(e *echo.Echo, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndStaffGate(t *testing.T) {
	auth := stubAuth{
		"pax":  {ID: 7, IsActive: true},
		"crew": {ID: 1, IsActive: true, IsStaff: true},
	}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, JWTAuth(auth), RequireStaff())

	cases := []struct {
		header string
		code   int
		body   string
	}{
		{"", http.StatusUnauthorized, "No token provided"},
		{"Basic abc", http.StatusUnauthorized, "No token provided"},
		{"Bearer nope", http.StatusUnauthorized, "Invalid or expired token"},
		{"Bearer disabled", http.StatusForbidden, "Account is disabled"},
		{"Bearer pax", http.StatusForbidden, "Staff privileges required"},
		{"bearer crew", http.StatusOK, "ok"},
	}
	for _, tc := range cases {
		rec := serve(e, tc.header)
		assert.Equal(t, tc.code, rec.Code, tc.header)
		assert.Contains(t, rec.Body.String(), tc.body, tc.header)
	}
}

func TestCurrentUser(t *testing.T) {
	e := echo.New()
	var seen *model.User
	e.GET("/x", func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusNoContent)
	}, JWTAuth(stubAuth{"pax": {ID: 7, IsActive: true}}))

	rec := serve(e, "Bearer pax")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint64(7), seen.ID)
}

func TestLocalLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: time.Hour, KeyStrategy: "ip", Prefix: "rl",
	}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, nil, nil))

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1").Code)
	rec := hit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2").Code, "buckets are per key")
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"status":"success"}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.JSONEq(t, `{"status":"success"}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
}
