// Package api provides the HTTP surface for the PickupPal engine.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pickuppal/pickuppal/internal/app/progression"
	"github.com/pickuppal/pickuppal/internal/app/spending"
	"github.com/pickuppal/pickuppal/internal/domain"
	"github.com/pickuppal/pickuppal/internal/infra/observability"
	"github.com/pickuppal/pickuppal/internal/transport"
)

// Engine is the session surface the handlers call. transport.Mock
// implements it.
type Engine interface {
	Profile(ctx context.Context) (domain.UserProfile, error)
	Activities(ctx context.Context) ([]domain.Activity, error)
	Rankings(ctx context.Context) (domain.Rankings, error)
	Journal(ctx context.Context, limit int) ([]domain.LedgerEntry, error)

	LogPickup(ctx context.Context, restaurant string, distanceKm float64, reusable bool) (progression.Result, error)
	LogDelivery(ctx context.Context, restaurant string, orderValue int) (progression.Result, error)
	RewardSteps(ctx context.Context, steps int) (int, error)

	AllocateStats(ctx context.Context, attack, defense int) (domain.Character, error)
	DrawCoupon(ctx context.Context, cost int) (*domain.Coupon, error)
	SpinRoulette(ctx context.Context, cost int) (transport.Spin, error)
	Checkout(ctx context.Context, subtotal, requested int) (spending.CheckoutQuote, error)

	AddFriend(ctx context.Context, nickname string) (domain.AddFriendResult, error)
	Rename(ctx context.Context, name string) (domain.UserProfile, error)
}

// Server is the PickupPal HTTP API server.
type Server struct {
	engine         Engine
	metricsEnabled bool
	timeout        time.Duration
}

// NewServer creates a new API server.
func NewServer(engine Engine) *Server {
	return &Server{engine: engine, timeout: 30 * time.Second}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetTimeout overrides the per-request timeout.
func (s *Server) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(traceMiddleware)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/user", s.handleUser)
		r.Put("/user/name", s.handleRename)

		r.Get("/activities", s.handleActivities)
		r.Post("/activities/pickup", s.handlePickup)
		r.Post("/activities/delivery", s.handleDelivery)

		r.Get("/rankings", s.handleRankings)

		r.Post("/character/allocate", s.handleAllocate)

		r.Post("/shop/coupon", s.handleCoupon)
		r.Post("/shop/roulette", s.handleRoulette)
		r.Post("/shop/checkout", s.handleCheckout)

		r.Post("/friends", s.handleAddFriend)
		r.Post("/steps", s.handleSteps)
		r.Get("/ledger", s.handleLedger)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// traceMiddleware carries chi's request ID into the tracer's context so
// engine spans share the request's trace ID.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(observability.WithTraceID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
