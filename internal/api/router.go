package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/edinar-labs/flexible-staking/internal/api/handlers"
	"github.com/edinar-labs/flexible-staking/internal/api/middleware"
	"github.com/edinar-labs/flexible-staking/internal/telemetry"
)

// Router wraps mux.Router to add more functionality
type Router struct {
	*mux.Router
	middleware []mux.MiddlewareFunc
	endpoint   string
}

// NewRouter creates and configures a new router with all dependencies
func NewRouter(
	stakingHandler *handlers.StakingHandler,
	healthHandler http.Handler,
	endpoint string,
) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		middleware: []mux.MiddlewareFunc{
			middleware.Logging,
			telemetry.MetricsMiddleware,
		},
		endpoint: endpoint,
	}

	r.setup()
	r.registerRoutes(stakingHandler, healthHandler)

	return r
}

// setup configures the base router with middleware and common settings
func (r *Router) setup() {
	for _, m := range r.middleware {
		r.Use(m)
	}
}

func (r *Router) registerRoutes(stakingHandler *handlers.StakingHandler, healthHandler http.Handler) {
	if healthHandler == nil {
		healthHandler = http.HandlerFunc(health)
	}

	r.Handle("/metrics", telemetry.MetricsHandler()).Methods("GET")
	r.Handle("/health", healthHandler).Methods("GET")

	api := r.PathPrefix(r.endpoint).Subrouter()

	api.HandleFunc("/user-info", stakingHandler.GetUserInfo).Methods("GET")
	api.HandleFunc("/approve", stakingHandler.Approve).Methods("POST")
	api.HandleFunc("/stake", stakingHandler.Stake).Methods("POST")
	api.HandleFunc("/unstake", stakingHandler.Unstake).Methods("POST")
	api.HandleFunc("/claim", stakingHandler.Claim).Methods("POST")
	api.HandleFunc("/ws", stakingHandler.HandleWebSocket).Methods("GET")
}

// AddMiddleware adds a new middleware to the router
func (r *Router) AddMiddleware(middleware mux.MiddlewareFunc) {
	r.Use(middleware)
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
