package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL via database/sql over the pgx
// stdlib driver.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const userColumns = `id, username, password_hash, nombre_completo, rol, activo, ultimo_acceso, fecha_creacion`

func (s *PGStore) CreateUser(ctx context.Context, u *User) error {
	err := s.db.QueryRowContext(ctx,
		`insert into usuarios(username, password_hash, nombre_completo, rol, activo)
		 values($1,$2,$3,$4,$5)
		 returning id, fecha_creacion`,
		u.Username, u.PasswordHash, u.FullName, u.Role, u.Active,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

func (s *PGStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from usuarios where username=$1`, username)
	return scanUser(row)
}

func (s *PGStore) FindUserByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from usuarios where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) UpdateLastAccess(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`update usuarios set ultimo_acceso=now() where id=$1`, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from usuarios order by fecha_creacion desc, id desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PGStore) AppendAccess(ctx context.Context, e *AccessEntry) error {
	details, _ := json.Marshal(e.Details)
	return s.db.QueryRowContext(ctx,
		`insert into logs_acceso(usuario_id, accion, ip_address, detalles, fecha)
		 values($1,$2,$3,$4,$5)
		 returning id`,
		e.UserID, e.Action, e.IP, details, e.OccurredAt,
	).Scan(&e.ID)
}

func (s *PGStore) ListAccess(ctx context.Context, limit int) ([]*AccessEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, usuario_id, accion, ip_address, detalles, fecha
		 from logs_acceso order by fecha desc, id desc limit $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*AccessEntry
	for rows.Next() {
		var (
			e       AccessEntry
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.IP, &details, &e.OccurredAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &e.Details)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u          User
		lastAccess sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role,
		&u.Active, &lastAccess, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if lastAccess.Valid {
		t := lastAccess.Time
		u.LastAccess = &t
	}
	return &u, nil
}

// isUniqueViolation reports whether err is the Postgres unique-constraint
// error (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
