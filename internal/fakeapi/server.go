// Package fakeapi is an in-memory implementation of the food bank REST API used for
// local development and integration tests.
package fakeapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/auth"
	pkgauth "github.com/angelmondragon/foodbank-client/pkg/auth"
	"github.com/angelmondragon/foodbank-client/pkg/config"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Params configures a Server.
type Params struct {
	Config    config.FakeAPIConfig
	Passwords config.PasswordConfig
	Logger    *logger.Logger
	Registry  *prometheus.Registry
	Now       func() time.Time
}

// Server serves the REST surface under /api.
type Server struct {
	cfg       config.FakeAPIConfig
	passwords config.PasswordConfig
	logg      *logger.Logger
	registry  *prometheus.Registry
	store     *memStore
	hooks     *Hooks
	router    chi.Router

	clockMu sync.Mutex
	clock   func() time.Time
	offset  time.Duration
}

// New builds a server. Inventory is seeded when the config asks for it.
func New(params Params) (*Server, error) {
	if params.Config.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if params.Config.TokenTTL() <= 0 {
		return nil, fmt.Errorf("jwt expiration minutes must be positive")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	reg := params.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	clock := params.Now
	if clock == nil {
		clock = time.Now
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodbank",
		Subsystem: "fakeapi",
		Name:      "http_requests_total",
		Help:      "Requests served by the fake backend.",
	}, []string{"route", "method", "status"})
	if err := reg.Register(requests); err != nil {
		return nil, fmt.Errorf("registering request counter: %w", err)
	}

	s := &Server{
		cfg:       params.Config,
		passwords: params.Passwords,
		logg:      logg,
		registry:  reg,
		store:     newMemStore(),
		clock:     clock,
	}
	s.hooks = newHooks(s)
	if params.Config.SeedInventory {
		s.seedInventory()
	}
	s.router = s.routes(requests)
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hooks exposes test controls.
func (s *Server) Hooks() *Hooks {
	return s.hooks
}

func (s *Server) now() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	return s.clock().Add(s.offset)
}

func (s *Server) mintToken(u auth.User) (string, error) {
	return pkgauth.MintAccessToken(s.cfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	})
}

func (s *Server) routes(requests *prometheus.CounterVec) chi.Router {
	r := chi.NewRouter()
	r.Use(recoverer(s.logg))
	r.Use(requestID(s.logg))
	r.Use(instrument(s.logg, s.hooks, requests))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeSuccessStatus(w, http.StatusOK, envelope{Message: "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Get("/verify-email", s.handleVerifyEmail)
			r.Post("/resend-verification", s.handleResendVerification)
			r.Get("/me", s.handleMe)
			r.With(s.authenticate).Post("/logout", s.handleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.handleGetCart)
				r.Post("/add", s.handleAddToCart)
				r.Put("/items/{itemID}", s.handleUpdateCartItem)
				r.Delete("/items/{itemID}", s.handleRemoveCartItem)
				r.Delete("/clear", s.handleClearCart)
				r.Post("/save-wishlist", s.handleSaveWishlist)
			})

			r.Route("/wishlists", func(r chi.Router) {
				r.Get("/", s.handleListWishlists)
				r.Post("/", s.handleCreateWishlist)
				r.Post("/{wishlistID}/load-to-cart", s.handleLoadWishlist)
				r.Delete("/{wishlistID}", s.handleDeleteWishlist)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", s.handleListInventory)
				r.Get("/stats", s.handleInventoryStats)
				r.Get("/alerts/low-stock", s.handleLowStock)
				r.Get("/alerts/expiring", s.handleExpiring)
				r.Get("/meta/categories", s.handleCategories)
				r.Get("/meta/dietary-categories", s.handleDietaryCategories)
				r.Get("/{itemID}", s.handleGetInventory)
			})

			r.Route("/food-requests", func(r chi.Router) {
				r.Post("/", s.handleSubmitRequest)
				r.Get("/my-requests", s.handleMyRequests)
				r.Get("/{requestID}", s.handleGetRequest)
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/foodbank/{foodbankID}", s.handleFoodbankShifts)
				r.Get("/foodbank/{foodbankID}/date-range", s.handleShiftsInRange)
				r.Get("/upcoming/foodbank/{foodbankID}", s.handleUpcomingShifts)
				r.Get("/available/foodbank/{foodbankID}", s.handleAvailableShifts)
				r.Get("/{shiftID}", s.handleGetShift)

				r.Group(func(r chi.Router) {
					r.Use(s.requireAdmin)
					r.Post("/", s.handleCreateShift)
					r.Put("/{shiftID}", s.handleUpdateShift)
					r.Delete("/{shiftID}", s.handleDeleteShift)
					r.Patch("/{shiftID}/status", s.handleShiftStatus)
				})
			})

			r.Route("/volunteers", func(r chi.Router) {
				r.Post("/", s.handleCreateVolunteer)
				r.Get("/available", s.handleAvailableVolunteers)
				r.Get("/foodbank/{foodbankID}", s.handleFoodbankVolunteers)
				r.Get("/{volunteerID}", s.handleGetVolunteer)
				r.Put("/{volunteerID}", s.handleUpdateVolunteer)

				r.Group(func(r chi.Router) {
					r.Use(s.requireAdmin)
					r.Get("/stats/foodbank/{foodbankID}", s.handleVolunteerStats)
					r.Patch("/{volunteerID}/status", s.handleVolunteerStatus)
					r.Delete("/{volunteerID}", s.handleDeleteVolunteer)
				})
			})

			r.Route("/volunteer-shifts", func(r chi.Router) {
				r.Post("/", s.handleAssignShift)
				r.Get("/volunteer/{volunteerID}", s.handleVolunteerAssignments)
				r.Get("/volunteer/{volunteerID}/hours", s.handleVolunteerHours)
				r.Get("/shift/{shiftID}", s.handleShiftAssignments)
				r.Get("/user/{userID}", s.handleUserAssignments)
				r.Get("/foodbank/{foodbankID}/hours", s.handleFoodbankHours)
				r.Patch("/{assignmentID}/status", s.handleAssignmentStatus)
				r.Patch("/{assignmentID}/cancel", s.handleCancelAssignment)
				r.Patch("/{assignmentID}/check-in", s.handleCheckIn)
				r.Patch("/{assignmentID}/check-out", s.handleCheckOut)
				r.Patch("/{assignmentID}/complete", s.handleCompleteAssignment)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/dashboard", s.handleDashboardReport)
				r.Get("/inventory", s.handleInventoryReport)
				r.Get("/requests", s.handleRequestReport)
				r.Get("/donations", s.handleDonationReport)
				r.Get("/users", s.handleUserReport)
				r.Get("/export", s.handleExportReport)
			})
		})
	})
	return r
}
