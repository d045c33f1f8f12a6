package auth

import "context"

// Store describes the persistence operations required by the auth core. The
// implementation is injected into Service so tests can substitute an
// in-memory fake.
type Store interface {
	// CreateUser inserts the user and fills in ID and CreatedAt. The unique
	// constraint on username is authoritative: violations surface as
	// ErrDuplicateUser.
	CreateUser(ctx context.Context, u *User) error
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByID(ctx context.Context, id int64) (*User, error)
	UpdateLastAccess(ctx context.Context, userID int64) error
	// ListUsers returns all users ordered by creation time descending.
	ListUsers(ctx context.Context) ([]*User, error)

	// AppendAccess writes one immutable access-log entry.
	AppendAccess(ctx context.Context, e *AccessEntry) error
	// ListAccess returns the most recent entries, newest first.
	ListAccess(ctx context.Context, limit int) ([]*AccessEntry, error)
}
