package handler

import (
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ghostink/ghostink/auth"
)

// ContentTypeJson checks that the requests have the Content-Type header set to "application/json".
// This helps against CSRF attacks.
func ContentTypeJson(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		mediaType, _, err := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
		if err != nil || mediaType != echo.MIMEApplicationJSON {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Only JSON allowed"})
		}

		return next(c)
	}
}

// paths reachable before the account exists
var (
	setupGatePaths    = []string{"/setup", "/login"}
	setupGatePrefixes = []string{"/src/static/", "/src/dist/"}
)

// SetupGate redirects every request to the setup page until the account has been created
func SetupGate(mgr *auth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, p := range setupGatePaths {
				if path == p {
					return next(c)
				}
			}
			for _, prefix := range setupGatePrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			hasAccount, err := mgr.HasAccount()
			if err != nil {
				return createError(c, err, "Cannot read configuration")
			}
			if !hasAccount {
				return c.Redirect(http.StatusFound, "/setup")
			}
			return next(c)
		}
	}
}
