// Package auth implements the single account life cycle: first run setup,
// credential checks for login, and account updates.
package auth

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/ghostink/ghostink/model"
	"github.com/ghostink/ghostink/ratelimit"
	"github.com/ghostink/ghostink/store"
	"github.com/ghostink/ghostink/util"
)

// LockoutNotifier is told when an IP reaches the login attempt limit
type LockoutNotifier interface {
	LoginLockout(ip string, attempts int, window time.Duration)
}

// AccountUpdate holds the fields of an account change request.
// Empty Username or NewPassword keep the current value.
type AccountUpdate struct {
	Username        string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

type Manager struct {
	config   store.IConfigStore
	limiter  *ratelimit.Limiter
	notifier LockoutNotifier
}

// NewManager creates a Manager. notifier may be nil.
func NewManager(config store.IConfigStore, limiter *ratelimit.Limiter, notifier LockoutNotifier) *Manager {
	return &Manager{
		config:   config,
		limiter:  limiter,
		notifier: notifier,
	}
}

func (m *Manager) readConfig() (model.AppConfig, error) {
	cfg, err := m.config.Read()
	if err != nil {
		return cfg, &StorageError{Op: "read config", Err: err}
	}
	return cfg, nil
}

// HasAccount reports whether setup has been completed
func (m *Manager) HasAccount() (bool, error) {
	cfg, err := m.readConfig()
	if err != nil {
		return false, err
	}
	return cfg.HasAccount(), nil
}

// IsCurrentUser reports whether username is the configured account. Sessions of a
// renamed or removed account stop being valid this way.
func (m *Manager) IsCurrentUser(username string) (bool, error) {
	cfg, err := m.readConfig()
	if err != nil {
		return false, err
	}
	return cfg.HasAccount() && cfg.Account.Username == username, nil
}

// Setup creates the account. It can succeed only once.
func (m *Manager) Setup(username, password, confirm string) error {
	cfg, err := m.readConfig()
	if err != nil {
		return err
	}
	if cfg.HasAccount() {
		return ErrAccountExists
	}

	username = strings.TrimSpace(username)
	if err := validateInput(setupInput{Username: username, Password: password, Confirm: confirm}, setupMessages); err != nil {
		return err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	account := model.Account{Username: username, PasswordHash: hash}
	if err := m.config.SaveAccount(account); err != nil {
		return &StorageError{Op: "save account", Err: err}
	}
	log.Infof("Created account %s", username)
	return nil
}

// Authenticate checks the credentials sent from ip. Every failure, including a
// rejection because of the rate limit, counts as an attempt.
func (m *Manager) Authenticate(username, password, ip string) error {
	if m.limiter.IsLimited(ip) {
		m.recordFailure(ip)
		log.Warnf("Login rate limit exceeded for %s", ip)
		return ErrRateLimited
	}

	cfg, err := m.readConfig()
	if err != nil {
		return err
	}

	username = strings.TrimSpace(username)
	usernameOK := cfg.HasAccount() &&
		subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Account.Username)) == 1

	// verify even on a username mismatch so both failures take the same time
	passwordOK := false
	if cfg.HasAccount() {
		passwordOK, err = util.VerifyHash(cfg.Account.PasswordHash, password)
		if err != nil {
			log.Error("Cannot verify password hash: ", err)
			passwordOK = false
		}
	}

	if !usernameOK || !passwordOK {
		m.recordFailure(ip)
		log.Warnf("Failed login attempt from %s", ip)
		return ErrInvalidCredentials
	}
	return nil
}

func (m *Manager) recordFailure(ip string) {
	attempts := m.limiter.RecordAttempt(ip)
	if attempts == m.limiter.MaxAttempts() && m.notifier != nil {
		m.notifier.LoginLockout(ip, attempts, m.limiter.Window())
	}
}

// UpdateAccount changes the username and/or the password after checking the
// current password. Nothing is written when any check fails.
func (m *Manager) UpdateAccount(update AccountUpdate) (model.Account, error) {
	cfg, err := m.readConfig()
	if err != nil {
		return model.Account{}, err
	}
	if !cfg.HasAccount() {
		return model.Account{}, ErrNoAccount
	}
	account := cfg.Account

	ok, err := util.VerifyHash(account.PasswordHash, update.CurrentPassword)
	if err != nil {
		log.Error("Cannot verify password hash: ", err)
	}
	if !ok {
		return model.Account{}, ErrCurrentPassword
	}

	if username := strings.TrimSpace(update.Username); username != "" {
		account.Username = username
	}

	if update.NewPassword != "" {
		input := newPasswordInput{NewPassword: update.NewPassword, ConfirmPassword: update.ConfirmPassword}
		if err := validateInput(input, newPasswordMessages); err != nil {
			return model.Account{}, err
		}
		hash, err := util.HashPassword(update.NewPassword)
		if err != nil {
			return model.Account{}, err
		}
		account.PasswordHash = hash
	}

	if err := m.config.SaveAccount(account); err != nil {
		return model.Account{}, &StorageError{Op: "save account", Err: err}
	}
	log.Infof("Updated account %s", account.Username)
	return account, nil
}
