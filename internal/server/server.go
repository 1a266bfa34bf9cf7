package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/payment-gateway/internal/auth"
	"github.com/hongminglow/payment-gateway/internal/config"
	"github.com/hongminglow/payment-gateway/internal/http/handlers"
	"github.com/hongminglow/payment-gateway/internal/logging"
	"github.com/hongminglow/payment-gateway/internal/middleware"
	"github.com/hongminglow/payment-gateway/internal/service"
	"github.com/hongminglow/payment-gateway/internal/storage"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Store     storage.Store
	Tokens    *auth.TokenManager
	Hasher    service.PasswordHasher
	Processor service.Processor
	Logger    logging.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// NewHandler builds the full routing tree: CORS and request logging around
// the mux, bearer authentication around protected routes.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	log := deps.Logger
	gate := auth.NewGate(deps.Tokens, log)
	protect := func(next http.Handler) http.Handler {
		return middleware.RequireAuth(gate, next)
	}

	accounts := service.NewAccountService(deps.Store, deps.Hasher, deps.Tokens, log)
	payments := service.NewPaymentService(deps.Store, deps.Store, deps.Processor, log)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), deps.Store, log).Register(mux)
	handlers.NewAuthHandler(accounts, log).Register(mux, protect)
	handlers.NewPaymentHandler(payments, log).Register(mux, protect)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(log, mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
