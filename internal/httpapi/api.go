package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gorilla/websocket"

	"ouvidoria.app/api/spec"
	"ouvidoria.app/internal/auth"
	"ouvidoria.app/internal/obs"
	"ouvidoria.app/internal/registry"
	"ouvidoria.app/internal/thread"
)

// ReadyProbe reports whether the service can take traffic (DB ping when a
// database is configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Ready        ReadyProbe
	Version      string
	Auth         *auth.Authenticator
	Gateway      *SessionGateway
	Threads      *thread.Service
	Broadcaster  *thread.Broadcaster
	Registry     *registry.Registry
	Competencias auth.CompetenciaStore
}

// API is the HTTP layer: REST handlers plus the per-thread WebSocket.
type API struct {
	mux          *http.ServeMux
	readyProbe   ReadyProbe
	version      string
	auth         *auth.Authenticator
	gateway      *SessionGateway
	threads      *thread.Service
	broadcaster  *thread.Broadcaster
	registry     *registry.Registry
	competencias auth.CompetenciaStore
	upgrader     websocket.Upgrader

	rateBurst  int
	ratePerSec int
}

func New(d Deps) *API {
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   d.Ready,
		version:      d.Version,
		auth:         d.Auth,
		gateway:      d.Gateway,
		threads:      d.Threads,
		broadcaster:  d.Broadcaster,
		registry:     d.Registry,
		competencias: d.Competencias,
		rateBurst:    50,
		ratePerSec:   25,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients come from app shells we do not control.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	// health/ready
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	// OpenAPI YAML
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth flows (public)
	a.mux.HandleFunc("/api/ping", a.handlePing)
	a.mux.HandleFunc("/api/signin", a.handleSignin)
	a.mux.HandleFunc("/api/login", a.handleLogin)
	a.mux.HandleFunc("/api/refresh", a.handleRefresh)
	a.mux.HandleFunc("/api/signoff", a.handleSignoff)

	// authenticated surface
	a.mux.HandleFunc("/api/me", a.handleMe)
	a.mux.HandleFunc("/api/reclamacao", a.handleThreadCollection)
	a.mux.HandleFunc("/api/reclamacao/", a.handleThreadResource)
	a.mux.HandleFunc("/api/competencia", a.handleCompetenciaCollection)
	a.mux.HandleFunc("/api/competencia/", a.handleCompetenciaResource)
	a.mux.HandleFunc("/api/user", a.handleUserCollection)
	a.mux.HandleFunc("/api/user/", a.handleUserResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- service handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "ouvidoria-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}

func (a *API) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong"))
}
