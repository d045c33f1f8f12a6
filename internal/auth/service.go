package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/empresa-minera/monitor/internal/obs"
)

const defaultTokenTTL = 8 * time.Hour

// Service orchestrates registration, login, logout and token verification on
// top of an injected Store.
type Service struct {
	store    Store
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithTokenTTL overrides the session token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// NewService constructs the auth core. The signing secret is mandatory: there
// is no usable degraded mode without token issuance.
func NewService(store Store, secret string, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	svc := &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// TokenTTL returns the configured session lifetime (the cookie max-age
// mirrors it).
func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }

// Register validates input, hashes the password and creates the user. The
// duplicate pre-check is a fast path only: the unique constraint enforced by
// the store is the authoritative defense against the check-then-insert race.
func (s *Service) Register(ctx context.Context, in RegisterInput) (PublicUser, error) {
	if in.Role == "" {
		in.Role = RoleViewer
	}
	if rules := validateRegister(in); len(rules) > 0 {
		return PublicUser{}, &ValidationError{Rules: rules}
	}

	username := strings.TrimSpace(in.Username)
	if _, err := s.store.FindUserByUsername(ctx, username); err == nil {
		return PublicUser{}, ErrDuplicateUser
	} else if !errors.Is(err, ErrNotFound) {
		return PublicUser{}, storeErr("lookup user", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     username,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return PublicUser{}, ErrDuplicateUser
		}
		return PublicUser{}, storeErr("create user", err)
	}

	s.appendAccess(ctx, &user.ID, ActionRegister, in.IP, map[string]string{
		"username": user.Username,
		"rol":      user.Role,
	})
	return user.Public(), nil
}

// Login authenticates the credential pair and issues a session token. Unknown
// username and wrong password both return ErrInvalidCredentials. The active
// flag is checked before password verification: rejecting a disabled account
// does not need a bcrypt round.
func (s *Service) Login(ctx context.Context, username, password, ip string) (PublicUser, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return PublicUser{}, "", ErrInvalidCredentials
	}

	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PublicUser{}, "", ErrInvalidCredentials
		}
		return PublicUser{}, "", storeErr("lookup user", err)
	}
	if !user.Active {
		return PublicUser{}, "", ErrAccountDisabled
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return PublicUser{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return PublicUser{}, "", err
	}

	// Last-access bookkeeping and the audit append are best effort: the
	// authentication itself already succeeded.
	if err := s.store.UpdateLastAccess(ctx, user.ID); err != nil {
		obs.LogRequest(map[string]any{
			"level": "warn", "msg": "update last access failed",
			"user_id": user.ID, "error": err.Error(),
		})
	}
	s.appendAccess(ctx, &user.ID, ActionLogin, ip, map[string]string{
		"username": user.Username,
	})
	return user.Public(), token, nil
}

// Logout records the audit entry for a valid identity. From the client's
// perspective it always succeeds: stateless tokens cannot be revoked, the
// client simply discards its copy.
func (s *Service) Logout(ctx context.Context, ident Identity, ip string) {
	s.appendAccess(ctx, &ident.UserID, ActionLogout, ip, map[string]string{
		"username": ident.Username,
	})
}

// Profile returns the current public record for an authenticated user.
func (s *Service) Profile(ctx context.Context, userID int64) (PublicUser, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PublicUser{}, ErrNotFound
		}
		return PublicUser{}, storeErr("lookup user", err)
	}
	return user.Public(), nil
}

// ListUsers returns every account's public fields, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]PublicUser, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// AccessHistory returns the most recent audit entries, newest first. The
// limit defaults to 100 and is capped at 500.
func (s *Service) AccessHistory(ctx context.Context, limit int) ([]*AccessEntry, error) {
	switch {
	case limit <= 0:
		limit = 100
	case limit > 500:
		limit = 500
	}
	entries, err := s.store.ListAccess(ctx, limit)
	if err != nil {
		return nil, storeErr("list access log", err)
	}
	return entries, nil
}

func (s *Service) appendAccess(ctx context.Context, userID *int64, action, ip string, details map[string]string) {
	entry := &AccessEntry{
		UserID:     userID,
		Action:     action,
		IP:         ip,
		Details:    details,
		OccurredAt: s.now().UTC(),
	}
	if err := s.store.AppendAccess(ctx, entry); err != nil {
		obs.LogRequest(map[string]any{
			"level": "warn", "msg": "access log append failed",
			"action": action, "error": err.Error(),
		})
	}
}

// storeErr downgrades infrastructure failures: context expiry becomes
// ErrUnavailable, anything else is wrapped for the server-side log and mapped
// to an opaque message at the HTTP boundary.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
