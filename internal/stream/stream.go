// Package stream fan-outs freshly inserted weight readings to live dashboard
// subscribers (SSE clients).
package stream

import (
	"context"
	"sync"
	"time"
)

// ReadingEvent is the payload pushed to subscribers when a new sample lands.
type ReadingEvent struct {
	ID        int64     `json:"id"`
	Weight    float64   `json:"peso"`
	Timestamp time.Time `json:"timestamp"`
}

// Stream fan-outs reading events to all active subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan ReadingEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan ReadingEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan ReadingEvent {
	ch := make(chan ReadingEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt ReadingEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
