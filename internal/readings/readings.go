// Package readings is the query and ingest service for weight-sensor data.
package readings

import (
	"context"
	"errors"
	"math"
	"time"
)

// DefaultLimit caps list queries; the dashboard chart shows at most 50 points.
const DefaultLimit = 50

// Reading is one weight sample as acquired from the scale.
type Reading struct {
	ID        int64     `json:"id"`
	Weight    float64   `json:"peso"`
	Timestamp time.Time `json:"timestamp"`
}

var (
	ErrInvalidWeight = errors.New("readings: invalid weight")
	ErrUnavailable   = errors.New("readings: storage unavailable")
)

// Store abstracts the readings table.
type Store interface {
	Insert(ctx context.Context, weight float64, at time.Time) (Reading, error)
	// Latest returns up to limit readings, newest first.
	Latest(ctx context.Context, limit int) ([]Reading, error)
	// Last returns the most recent reading, or nil when the table is empty.
	Last(ctx context.Context) (*Reading, error)
}

// Publisher receives every accepted reading; the HTTP layer wires the SSE
// stream here.
type Publisher interface {
	PublishReading(r Reading)
}

// Service validates and routes reading operations.
type Service struct {
	store Store
	pub   Publisher
	now   func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithPublisher fans accepted readings out to live subscribers.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("readings: store is required")
	}
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Insert stores a new sample and publishes it to live subscribers. Weight
// must be a finite non-negative number; the scale cannot report less than an
// empty platform.
func (s *Service) Insert(ctx context.Context, weight float64) (Reading, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return Reading{}, ErrInvalidWeight
	}
	r, err := s.store.Insert(ctx, weight, s.now().UTC())
	if err != nil {
		return Reading{}, wrapErr(err)
	}
	if s.pub != nil {
		s.pub.PublishReading(r)
	}
	return r, nil
}

// Latest returns the newest readings, most recent first. Limits outside
// (0, DefaultLimit] collapse to DefaultLimit.
func (s *Service) Latest(ctx context.Context, limit int) ([]Reading, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	items, err := s.store.Latest(ctx, limit)
	if err != nil {
		return nil, wrapErr(err)
	}
	return items, nil
}

// Last returns the most recent reading, nil when none exist.
func (s *Service) Last(ctx context.Context) (*Reading, error) {
	r, err := s.store.Last(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	return r, nil
}

func wrapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrUnavailable
	}
	return err
}
