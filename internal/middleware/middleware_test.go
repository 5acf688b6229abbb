package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aiImageStudio/business/recommend"
	"aiImageStudio/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT(userID, role, testSecret, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newAuthEcho() *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id"), "role": c.Get("role")})
	}, AuthMiddleware(testSecret))
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, AuthMiddleware(testSecret), AdminOnly())
	return e
}

func TestAuthMiddleware(t *testing.T) {
	e := newAuthEcho()

	rec := serve(e, http.MethodGet, "/me", bearer(t, "42", "USER"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":42,"role":"USER"}`, rec.Body.String())

	tests := []struct {
		name string
		auth string
		code int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"non numeric user", bearer(t, "abc", "USER"), http.StatusForbidden},
		{"zero user", bearer(t, "0", "USER"), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, "/me", tt.auth)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	e := newAuthEcho()

	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/admin", bearer(t, "1", "USER")).Code)
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/admin", bearer(t, "1", "admin")).Code)
}

func TestTraceID(t *testing.T) {
	e := echo.New()
	e.Use(TraceID())
	e.GET("/t", func(c echo.Context) error {
		return c.String(http.StatusOK, recommend.TraceIDFromContext(c.Request().Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))

	rec = serve(e, http.MethodGet, "/t", "")
	assert.Len(t, rec.Body.String(), 36, "a uuid is minted")
	assert.Equal(t, rec.Body.String(), rec.Header().Get(HeaderRequestID))
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(Metrics())
	e.GET("/boom", func(c echo.Context) error { return errors.New("kaboom") })
	e.GET("/teapot", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest, "bad input") })

	rec := serve(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal Server Error"}}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/teapot", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"BAD_REQUEST","message":"bad input"}}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
