package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"storefront/internal/entity"
	"storefront/internal/service"
)

const claimsContextKey = "user"

// JWT validates the bearer token and stores *service.JwtCustomClaims in the context.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    claimsContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or missing token", "code": "UNAUTHORIZED"})
		},
	})
}

// CurrentClaims returns the claims of the authenticated caller, or nil outside JWT-protected routes.
func CurrentClaims(c echo.Context) *service.JwtCustomClaims {
	token, ok := c.Get(claimsContextKey).(*jwt.Token)
	if !ok {
		return nil
	}
	claims, _ := token.Claims.(*service.JwtCustomClaims)
	return claims
}

// RequireRole rejects callers whose token does not carry role. Must run after JWT.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := CurrentClaims(c)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or missing token", "code": "UNAUTHORIZED"})
			}
			if claims.Role != role {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient role", "code": "FORBIDDEN"})
			}
			return next(c)
		}
	}
}

func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(entity.RoleAdmin)
}
