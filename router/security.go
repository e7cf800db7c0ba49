package router

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders adds the hardening headers to every response. HSTS is only
// sent in production mode.
func SecurityHeaders(production bool) echo.MiddlewareFunc {
	secure := middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := secure(next)
		return func(c echo.Context) error {
			if production {
				c.Response().Header().Set(echo.HeaderStrictTransportSecurity, hstsValue)
			}
			return h(c)
		}
	}
}
