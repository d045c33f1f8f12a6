package httpapi

import (
	"sync"
	"time"
)

// loginLimiter throttles login attempts per source address: at most max
// attempts inside a fixed window. Every attempt counts, successful or not, so
// credential stuffing cannot probe past the cap.
type loginLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	now     func() time.Time
	buckets map[string]*loginWindow
}

type loginWindow struct {
	start time.Time
	count int
}

func newLoginLimiter(max int, window time.Duration, now func() time.Time) *loginLimiter {
	return &loginLimiter{
		max:     max,
		window:  window,
		now:     now,
		buckets: make(map[string]*loginWindow),
	}
}

// allow records an attempt from ip. When the attempt exceeds the cap it
// returns false plus the seconds until the window reopens.
func (l *loginLimiter) allow(ip string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.buckets[ip]
	if !ok || now.Sub(w.start) >= l.window {
		l.buckets[ip] = &loginWindow{start: now, count: 1}
		l.sweep(now)
		return true, 0
	}
	w.count++
	if w.count > l.max {
		retry := int(w.start.Add(l.window).Sub(now).Seconds())
		if retry < 1 {
			retry = 1
		}
		return false, retry
	}
	return true, 0
}

// sweep drops expired windows. Called with the lock held, only on the reset
// path so the hot path stays cheap.
func (l *loginLimiter) sweep(now time.Time) {
	if len(l.buckets) < 1024 {
		return
	}
	for ip, w := range l.buckets {
		if now.Sub(w.start) >= l.window {
			delete(l.buckets, ip)
		}
	}
}
