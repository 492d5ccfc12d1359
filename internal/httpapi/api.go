// Package httpapi is the HTTP surface of the interviewer service. It owns
// routing, request decoding, error-to-status mapping and the middleware
// chain; all domain behavior lives behind the identity and interview
// services.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/identity"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/interview"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/obs"
)

// ReadyProbe reports whether the service can take traffic (database ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	identity   *identity.Service
	interviews interview.Service

	maxBodyBytes int64
	rateBurst    int
	ratePerSec   int
}

// New wires routes to the given services.
func New(rp ReadyProbe, version string, ids *identity.Service, interviews interview.Service) *API {
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   rp,
		version:      version,
		identity:     ids,
		interviews:   interviews,
		maxBodyBytes: 16 << 20, // recordings arrive base64-inlined
		rateBurst:    20,
		ratePerSec:   10,
	}

	// health/ready
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	// identity
	a.mux.HandleFunc("/auth/token", a.handleAuthToken)
	a.mux.HandleFunc("/auth/google", a.handleAuthGoogle)
	a.mux.HandleFunc("/users", a.handleUsersCollection)
	a.mux.HandleFunc("/users/", a.handleUserResource)

	// interviews
	a.mux.HandleFunc("/interview/", a.handleInterview)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", a.Root)

	return a
}

// SetRateLimit overrides the default per-IP token bucket.
func (a *API) SetRateLimit(burst, perSecond int) {
	if burst > 0 {
		a.rateBurst = burst
	}
	if perSecond > 0 {
		a.ratePerSec = perSecond
	}
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}
