package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/mts/internal/auth"
)

// requireToken guards /v1 with a bearer token when one is configured.
func (s *Server) requireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !s.opts.Auth.Enabled() {
				return next(c)
			}

			token := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" || !s.opts.Auth.Verify(token) {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="mts"`)
				return unauthorizedResponse(c)
			}
			return next(c)
		}
	}
}

func unauthorizedResponse(c echo.Context) error {
	if c == nil {
		return fmt.Errorf("authentication required")
	}
	return fail(c, http.StatusUnauthorized, "Authentication required", nil)
}
