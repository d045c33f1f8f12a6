// Package httpapi is the HTTP surface of the monitoring service: auth
// endpoints, weight-data endpoints and the operational probes.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/empresa-minera/monitor/internal/auth"
	"github.com/empresa-minera/monitor/internal/obs"
	"github.com/empresa-minera/monitor/internal/readings"
	"github.com/empresa-minera/monitor/internal/stream"
)

// requestTimeout bounds every store access reached from a handler; it mirrors
// the server read/write timeouts configured in cmd/api.
const requestTimeout = 15 * time.Second

// ReadyProbe checks readiness (a DB ping when a handle is configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options carries the collaborators and knobs the API needs.
type Options struct {
	Auth       *auth.Service
	Readings   *readings.Service
	Stream     *stream.Stream
	ReadyProbe ReadyProbe
	Version    string

	// Production toggles the Secure flag on the session cookie.
	Production bool
	CORSOrigin string

	// Login throttle: LoginRateLimit attempts per LoginRateWindow per source
	// address.
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	readings   *readings.Service
	stream     *stream.Stream
	readyProbe ReadyProbe
	version    string
	production bool
	corsOrigin string

	loginLimiter *loginLimiter

	// Global token-bucket throttle; tests raise these to avoid tripping it.
	rateBurst  int
	ratePerSec int
}

// New wires routes. Auth and Readings services are mandatory.
func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       opts.Auth,
		readings:   opts.Readings,
		stream:     opts.Stream,
		readyProbe: opts.ReadyProbe,
		version:    opts.Version,
		production: opts.Production,
		corsOrigin: opts.CORSOrigin,
		rateBurst:  50,
		ratePerSec: 25,
	}

	limit, window := opts.LoginRateLimit, opts.LoginRateWindow
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	a.loginLimiter = newLoginLimiter(limit, window, time.Now)

	// auth surface
	a.mux.HandleFunc("/login", a.handleLogin)
	a.mux.HandleFunc("/registro", a.handleRegister)
	a.mux.HandleFunc("/logout", a.handleLogout)
	a.mux.HandleFunc("/perfil", a.handleProfile)
	a.mux.Handle("/usuarios", a.requireRole(auth.RoleAdmin, http.HandlerFunc(a.handleListUsers)))
	a.mux.Handle("/logs", a.requireRole(auth.RoleAdmin, http.HandlerFunc(a.handleAccessLog)))

	// weight data (unauthenticated, matching the deployed dashboard)
	a.mux.HandleFunc("/datos", a.handleReadings)
	a.mux.HandleFunc("/datos/ultimo", a.handleLastReading)
	a.mux.HandleFunc("/datos/stream", a.handleReadingStream)

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = WithTimeout(h, requestTimeout)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h, a.corsOrigin)
	h = SecurityHeaders(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// ReadingPublisher adapts the SSE stream to readings.Publisher so the ingest
// service can fan accepted samples out to live dashboards.
type ReadingPublisher struct {
	Stream *stream.Stream
}

func (p ReadingPublisher) PublishReading(r readings.Reading) {
	if p.Stream == nil {
		return
	}
	p.Stream.Publish(stream.ReadingEvent{ID: r.ID, Weight: r.Weight, Timestamp: r.Timestamp})
}
