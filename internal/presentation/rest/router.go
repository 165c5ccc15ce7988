package rest

import (
	"log/slog"
	"net/http"

	"github.com/optic/loan-origination/internal/domain/valueobject"
	"github.com/optic/loan-origination/pkg/auth"
)

// RouterConfig bundles everything the HTTP surface needs.
type RouterConfig struct {
	Handler *Handler
	Health  *HealthHandler
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
	JWT     *auth.JWTService
	// PublicLimiter throttles unauthenticated routes. Nil disables throttling.
	PublicLimiter *IPRateLimiter
	Logger        *slog.Logger
}

// NewRouter builds the API mux. Public routes are rate limited; every other
// API route requires a bearer token carrying the named permission.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	h := cfg.Handler

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(mux)
	}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	public := func(fn http.HandlerFunc) http.Handler {
		if cfg.PublicLimiter == nil {
			return fn
		}
		return RateLimit(cfg.PublicLimiter, fn)
	}
	authn := auth.HTTPMiddleware(cfg.JWT, nil)
	guarded := func(perm valueobject.Permission, fn http.HandlerFunc) http.Handler {
		return authn(auth.RequirePermission(string(perm), fn))
	}

	// Auth
	mux.Handle("POST /api/v1/auth/register", public(h.register))
	mux.Handle("POST /api/v1/auth/login", public(h.login))

	// Clients
	mux.Handle("POST /api/v1/clients/register", public(h.registerClient))
	mux.Handle("GET /api/v1/clients", guarded(valueobject.PermReadClients, h.searchClients))
	mux.Handle("GET /api/v1/clients/{id}", guarded(valueobject.PermReadClients, h.getClient))
	mux.Handle("PUT /api/v1/clients/{id}", guarded(valueobject.PermUpdateClients, h.updateClient))
	mux.Handle("DELETE /api/v1/clients/{id}", guarded(valueobject.PermDeleteClients, h.deleteClient))

	// Loan applications
	mux.Handle("POST /api/v1/applications/simulate", public(h.simulate))
	mux.Handle("POST /api/v1/applications/register", public(h.createApplication))
	mux.Handle("GET /api/v1/applications", guarded(valueobject.PermReadLoans, h.searchApplications))
	mux.Handle("GET /api/v1/applications/{id}", guarded(valueobject.PermReadLoans, h.getApplication))
	mux.Handle("GET /api/v1/applications/{id}/schedule", guarded(valueobject.PermReadLoans, h.getSchedule))
	mux.Handle("PUT /api/v1/applications/{id}", guarded(valueobject.PermUpdateLoans, h.recomputeApplication))
	mux.Handle("DELETE /api/v1/applications/{id}", guarded(valueobject.PermDeleteLoans, h.deleteApplication))

	// Dashboard
	mux.Handle("GET /api/v1/dashboard", guarded(valueobject.PermReadDashboard, h.dashboard))

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return LoggingMiddleware(logger)(mux)
}
