// Package web provides the storefront's JSON HTTP API.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/storefront/internal/config"
	"github.com/JonMunkholm/storefront/internal/web/middleware"
)

// Pinger reports database health. Satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the storefront API.
type Server struct {
	service Service
	cfg     *config.Config
	db      Pinger
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service Service, cfg *config.Config, db Pinger) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		db:      db,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
//
// Admin routes (catalog writes, imports, order status) sit behind the API
// key; customer routes (cart, wishlist, addresses, own orders) behind a
// bearer token. Catalog reads are public. Imports run synchronously and are
// the only routes without the request timeout.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	admin := middleware.APIKeyAuth(&s.cfg.Security)
	user := middleware.UserAuth(&s.cfg.Security)
	timeout := func(next http.Handler) http.Handler { return next }
	if s.cfg.Server.RequestTimeout > 0 {
		timeout = chimw.Timeout(s.cfg.Server.RequestTimeout)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.With(admin).Post("/products/import", s.handleImportProducts)
		r.With(admin, timeout).Post("/products/import/preview", s.handlePreviewImport)

		r.Group(func(r chi.Router) {
			r.Use(timeout)

			// Catalog
			r.Get("/products", s.handleListProducts)
			r.Get("/products/{id}", s.handleGetProduct)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/products/template", s.handleDownloadTemplate)
				r.Post("/products", s.handleCreateProduct)
				r.Put("/products/{id}", s.handleUpdateProduct)
				r.Delete("/products/{id}", s.handleDeleteProduct)
				r.Get("/imports", s.handleListImports)
				r.Put("/orders/{id}", s.handleUpdateOrderStatus)
			})

			// Customer
			r.Group(func(r chi.Router) {
				r.Use(user)

				r.Post("/orders", s.handlePlaceOrder)
				r.Get("/orders", s.handleListOrders)
				r.Delete("/orders/{id}", s.handleDeleteOrder)

				r.Post("/cart", s.handleAddToCart)
				r.Get("/cart", s.handleGetCart)
				r.Put("/cart/{id}", s.handleUpdateCart)
				r.Delete("/cart/{id}", s.handleRemoveFromCart)

				r.Post("/wishlist", s.handleAddToWishlist)
				r.Get("/wishlist", s.handleListWishlist)
				r.Delete("/wishlist/{id}", s.handleRemoveFromWishlist)

				r.Post("/addresses", s.handleCreateAddress)
				r.Get("/addresses", s.handleListAddresses)
				r.Put("/addresses/{id}", s.handleUpdateAddress)
				r.Delete("/addresses/{id}", s.handleDeleteAddress)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth pings the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]any{
		"status":  "ok",
		"imports": s.service.ImportLimiterStatus(),
	}
	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			status["status"] = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	writeJSON(w, http.StatusOK, status)
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// JSON only; nothing should ever be rendered or loaded from a response.
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
