package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
	"storefront/internal/service"
)

const secret = "middleware-secret"

func signToken(t *testing.T, key string, customerID int, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := &service.JwtCustomClaims{
		CustomerID: customerID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Prometheus())
	whoami := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]int{"customer_id": CurrentClaims(c).CustomerID})
	}
	e.GET("/me", whoami, JWT(secret))
	e.GET("/admin", whoami, JWT(secret), RequireAdmin())
	return e
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWT(t *testing.T) {
	e := newServer()

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"customer token", "/me", signToken(t, secret, 7, entity.RoleCustomer, time.Hour), http.StatusOK},
		{"missing token", "/me", "", http.StatusUnauthorized},
		{"wrong key", "/me", signToken(t, "other", 7, entity.RoleCustomer, time.Hour), http.StatusUnauthorized},
		{"expired", "/me", signToken(t, secret, 7, entity.RoleCustomer, -time.Minute), http.StatusUnauthorized},
		{"customer on admin route", "/admin", signToken(t, secret, 7, entity.RoleCustomer, time.Hour), http.StatusForbidden},
		{"admin on admin route", "/admin", signToken(t, secret, 1, entity.RoleAdmin, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, tt.path, tt.token)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestJWT_ExposesClaims(t *testing.T) {
	e := newServer()
	rec := get(e, "/me", signToken(t, secret, 42, entity.RoleCustomer, time.Hour))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"customer_id":42}`, rec.Body.String())
}

func TestRequireRole_WithoutJWT(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole(entity.RoleAdmin))

	rec := get(e, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}
