package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountExists is returned by Setup once the account has been created
	ErrAccountExists = errors.New("account already exists")
	// ErrNoAccount is returned when an operation needs the account before setup ran
	ErrNoAccount = errors.New("no account configured")
	// ErrInvalidCredentials is returned for any failed login, without telling which field was wrong
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrCurrentPassword is returned by UpdateAccount when the current password does not match
	ErrCurrentPassword = errors.New("current password is incorrect")
	// ErrRateLimited is returned when the client IP has too many recent login attempts
	ErrRateLimited = errors.New("too many login attempts")
)

// ValidationError carries a message that can be shown to the user as is
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// StorageError wraps a failure of the configuration file
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err means bad credentials
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrCurrentPassword)
}
