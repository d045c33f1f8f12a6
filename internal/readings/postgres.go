package readings

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store over the datos table.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, weight float64, at time.Time) (Reading, error) {
	r := Reading{Weight: weight}
	err := s.db.QueryRowContext(ctx,
		`insert into datos(peso, timestamp) values($1,$2) returning id, timestamp`,
		weight, at,
	).Scan(&r.ID, &r.Timestamp)
	if err != nil {
		return Reading{}, err
	}
	return r, nil
}

func (s *PGStore) Latest(ctx context.Context, limit int) ([]Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, peso, timestamp from datos order by timestamp desc, id desc limit $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(&r.ID, &r.Weight, &r.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (s *PGStore) Last(ctx context.Context) (*Reading, error) {
	var r Reading
	err := s.db.QueryRowContext(ctx,
		`select id, peso, timestamp from datos order by timestamp desc, id desc limit 1`,
	).Scan(&r.ID, &r.Weight, &r.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
