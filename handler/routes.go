package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/rs/xid"

	"github.com/ghostink/ghostink/auth"
	"github.com/ghostink/ghostink/model"
	"github.com/ghostink/ghostink/store"
	"github.com/ghostink/ghostink/util"
)

const (
	msgAccountCreated     = "Account created. Please log in."
	msgInvalidCredentials = "Invalid username or password."
	msgRateLimited        = "Too many login attempts. Try again in a minute."
	msgCurrentPassword    = "Current password is incorrect."
	msgAccountUpdated     = "Account updated."
	msgStashFieldsMissing = "Label and emoji are required."
)

// Deps are the components the handlers work with
type Deps struct {
	Auth      *auth.Manager
	Stash     store.IStashStore
	Assets    model.ViteAssets
	// AssetsDir holds the static/ and dist/ front-end folders. Empty disables them.
	AssetsDir string
}

type jsonHTTPResponse struct {
	Status  bool   `json:"ok"`
	Message string `json:"msg,omitempty"`
}

type jsonAccountResponse struct {
	Status   bool   `json:"ok"`
	Message  string `json:"msg"`
	Username string `json:"username"`
}

func createError(c echo.Context, err error, msg string) error {
	log.Error(msg, ": ", err)
	return c.JSON(
		http.StatusInternalServerError,
		jsonHTTPResponse{
			false,
			msg})
}

// SetupPage handler
func SetupPage(mgr *auth.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		hasAccount, err := mgr.HasAccount()
		if err != nil {
			return createError(c, err, "Cannot read configuration")
		}
		if hasAccount {
			return c.Redirect(http.StatusFound, "/login")
		}

		return c.Render(http.StatusOK, "setup.html", map[string]interface{}{
			"baseData": model.BaseData{Active: "setup"},
			"errors":   popFlashes(c, flashError),
			"messages": popFlashes(c, flashSuccess),
		})
	}
}

// Setup handler to create the account
func Setup(mgr *auth.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := mgr.Setup(c.FormValue("username"), c.FormValue("password"), c.FormValue("confirm"))

		var validationErr *auth.ValidationError
		switch {
		case err == nil:
			addFlash(c, flashSuccess, msgAccountCreated)
			return c.Redirect(http.StatusFound, "/login")
		case errors.Is(err, auth.ErrAccountExists):
			return c.Redirect(http.StatusFound, "/login")
		case errors.As(err, &validationErr):
			addFlash(c, flashError, validationErr.Msg)
			return c.Redirect(http.StatusFound, "/setup")
		default:
			return createError(c, err, "Cannot create account")
		}
	}
}

// LoginPage handler
func LoginPage(mgr *auth.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		hasAccount, err := mgr.HasAccount()
		if err != nil {
			return createError(c, err, "Cannot read configuration")
		}
		if !hasAccount {
			return c.Redirect(http.StatusFound, "/setup")
		}
		if isValidSession(c, mgr) {
			return c.Redirect(http.StatusFound, "/")
		}

		return c.Render(http.StatusOK, "login.html", map[string]interface{}{
			"baseData": model.BaseData{Active: "login"},
			"next":     c.QueryParam("next"),
			"errors":   popFlashes(c, flashError),
			"messages": popFlashes(c, flashSuccess),
		})
	}
}

// Login for signing in handler
func Login(mgr *auth.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		hasAccount, err := mgr.HasAccount()
		if err != nil {
			return createError(c, err, "Cannot read configuration")
		}
		if !hasAccount {
			return c.Redirect(http.StatusFound, "/setup")
		}
		if isValidSession(c, mgr) {
			return c.Redirect(http.StatusFound, "/")
		}

		nextURL := c.QueryParam("next")
		if nextURL == "" {
			nextURL = c.FormValue("next")
		}

		err = mgr.Authenticate(c.FormValue("username"), c.FormValue("password"), c.RealIP())
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrRateLimited):
			addFlash(c, flashError, msgRateLimited)
			return c.Redirect(http.StatusFound, loginURL(nextURL))
		case errors.Is(err, auth.ErrInvalidCredentials):
			addFlash(c, flashError, msgInvalidCredentials)
			return c.Redirect(http.StatusFound, loginURL(nextURL))
		default:
			return createError(c, err, "Cannot check credentials")
		}

		username := strings.TrimSpace(c.FormValue("username"))
		if err := createSession(c, username); err != nil {
			return createError(c, err, "Cannot create session")
		}
		log.Infof("Logged in as %s from %s", username, c.RealIP())

		if nextURL != "" && util.IsSafeRedirect(hostURL(c), nextURL) {
			return c.Redirect(http.StatusFound, nextURL)
		}
		return c.Redirect(http.StatusFound, "/")
	}
}

func loginURL(nextURL string) string {
	if nextURL == "" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(nextURL)
}

// hostURL is the origin the application was reached at
func hostURL(c echo.Context) *url.URL {
	return &url.URL{Scheme: c.Scheme(), Host: c.Request().Host, Path: "/"}
}

// Logout to log a user out
func Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		clearSession(c)
		return c.Redirect(http.StatusFound, "/login")
	}
}

type accountRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UpdateAccount handler to change username and/or password
func UpdateAccount(mgr *auth.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req accountRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Bad post data"})
		}

		account, err := mgr.UpdateAccount(auth.AccountUpdate{
			Username:        req.Username,
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
			ConfirmPassword: req.ConfirmPassword,
		})

		var validationErr *auth.ValidationError
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrCurrentPassword):
			log.Warnf("Account update with wrong current password from %s", c.RealIP())
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, msgCurrentPassword})
		case errors.As(err, &validationErr):
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, validationErr.Msg})
		default:
			return createError(c, err, "Cannot update account")
		}

		if account.Username != currentUser(c) {
			if err := createSession(c, account.Username); err != nil {
				return createError(c, err, "Cannot update session")
			}
		}

		return c.JSON(http.StatusOK, jsonAccountResponse{true, msgAccountUpdated, account.Username})
	}
}

// GetStash handler returns all stash entries
func GetStash(db store.IStashStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		entries, err := db.GetStashEntries()
		if err != nil {
			return createError(c, err, "Cannot fetch stash entries")
		}
		return c.JSON(http.StatusOK, entries)
	}
}

type stashEntryRequest struct {
	Label string `json:"label" validate:"required"`
	Emoji string `json:"emoji" validate:"required"`
}

// NewStashEntry handler
func NewStashEntry(db store.IStashStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req stashEntryRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, msgStashFieldsMissing})
		}
		req.Label = strings.TrimSpace(req.Label)
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, msgStashFieldsMissing})
		}

		entry := model.StashEntry{
			ID:      xid.New().String(),
			Label:   req.Label,
			Emoji:   req.Emoji,
			Created: time.Now().UTC(),
		}
		if err := db.AppendStashEntry(entry); err != nil {
			return createError(c, err, "Cannot save stash entry")
		}
		log.Infof("Created stash entry %s", entry.ID)

		return c.JSON(http.StatusCreated, entry)
	}
}

// RemoveStashEntry handler. Unknown ids succeed as well.
func RemoveStashEntry(db store.IStashStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		entryID := c.Param("id")
		if err := db.DeleteStashEntry(entryID); err != nil {
			return createError(c, err, "Cannot delete stash entry")
		}
		log.Infof("Removed stash entry %s", entryID)
		return c.JSON(http.StatusOK, jsonHTTPResponse{Status: true})
	}
}

// Index handler renders the main page
func Index(assets model.ViteAssets) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "index.html", map[string]interface{}{
			"baseData": model.BaseData{Active: "index", CurrentUser: currentUser(c)},
			"assets":   assets,
		})
	}
}
