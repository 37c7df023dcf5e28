package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"abcstore/internal/adapter/api/middleware"
	"abcstore/internal/domain/entity"
	"abcstore/internal/infrastructure/auth"
)

func invoke(t *testing.T, m *middleware.AuthMiddleware, authorization string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := m.Authenticate(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"uid":  c.Get("uid"),
			"role": c.Get("role"),
		})
	})
	return rec, handler(c)
}

func TestAuthenticate(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", 3600)
	m := middleware.NewAuthMiddleware(jwtManager)

	t.Run("missing header", func(t *testing.T) {
		_, err := invoke(t, m, "")
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		_, err := invoke(t, m, "Basic dXNlcjpwYXNz")
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("tampered token", func(t *testing.T) {
		_, err := invoke(t, m, "Bearer not-a-real-token")
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("valid token injects identity", func(t *testing.T) {
		user := &entity.User{
			ID:   primitive.NewObjectID(),
			Role: entity.RoleAdmin,
		}
		token, err := jwtManager.Generate(user)
		require.NoError(t, err)

		rec, err := invoke(t, m, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), user.ID.Hex())
		assert.Contains(t, rec.Body.String(), entity.RoleAdmin)
	})
}
