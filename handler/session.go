package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/rs/xid"

	"github.com/ghostink/ghostink/auth"
	"github.com/ghostink/ghostink/util"
)

const (
	sessionName      = "session"
	sessionTokenName = "session_token"
	flashError       = "error"
	flashSuccess     = "success"
)

// ValidSession only lets requests with a valid session through. Anonymous GET
// requests are sent to the login page with the original url as next target.
func ValidSession(mgr *auth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isValidSession(c, mgr) {
				if c.Request().Method == http.MethodGet {
					return c.Redirect(http.StatusFound, fmt.Sprintf("/login?next=%s", url.QueryEscape(c.Request().URL.RequestURI())))
				}
				return c.Redirect(http.StatusFound, "/login")
			}
			return next(c)
		}
	}
}

func isValidSession(c echo.Context, mgr *auth.Manager) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	username, ok := sess.Values["username"].(string)
	if !ok || username == "" {
		return false
	}
	cookie, err := c.Cookie(sessionTokenName)
	if err != nil || sess.Values[sessionTokenName] != cookie.Value {
		return false
	}

	current, err := mgr.IsCurrentUser(username)
	if err != nil {
		log.Error("Cannot check session user: ", err)
		return false
	}
	return current
}

// currentUser to get username of logged in user
func currentUser(c echo.Context) string {
	sess, _ := session.Get(sessionName, c)
	username, _ := sess.Values["username"].(string)
	return username
}

// createSession binds the session to username and issues a fresh session token
func createSession(c echo.Context, username string) error {
	sess, _ := session.Get(sessionName, c)
	token := xid.New().String()
	sess.Values["username"] = username
	sess.Values[sessionTokenName] = token
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}

	c.SetCookie(tokenCookie(sess.Options, token))
	return nil
}

// clearSession to remove current session
func clearSession(c echo.Context) {
	sess, _ := session.Get(sessionName, c)
	delete(sess.Values, "username")
	delete(sess.Values, sessionTokenName)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		log.Error("Cannot save session: ", err)
	}

	cookie := tokenCookie(sess.Options, "")
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

func tokenCookie(opts *sessions.Options, value string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     sessionTokenName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   !util.DevMode,
		SameSite: http.SameSiteLaxMode,
	}
	if opts != nil {
		cookie.Path = opts.Path
		cookie.MaxAge = opts.MaxAge
		cookie.Secure = opts.Secure
		cookie.SameSite = opts.SameSite
	}
	return cookie
}

func addFlash(c echo.Context, category string, msg string) {
	sess, _ := session.Get(sessionName, c)
	sess.AddFlash(msg, category)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		log.Error("Cannot save session: ", err)
	}
}

// popFlashes returns and removes the pending flash messages of a category
func popFlashes(c echo.Context, category string) []string {
	sess, _ := session.Get(sessionName, c)
	flashes := sess.Flashes(category)
	if len(flashes) == 0 {
		return nil
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		log.Error("Cannot save session: ", err)
	}

	messages := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
