package auth

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials covers both unknown username and wrong password
	// so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountDisabled    = errors.New("auth: account disabled")
	ErrDuplicateUser      = errors.New("auth: user already exists")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrNotFound           = errors.New("auth: not found")
	ErrUnavailable        = errors.New("auth: storage unavailable")
)

// ValidationError lists every violated input rule, not just the first one.
type ValidationError struct {
	Rules []string
}

func (e *ValidationError) Error() string {
	return "auth: validation failed: " + strings.Join(e.Rules, "; ")
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
