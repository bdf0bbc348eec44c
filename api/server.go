package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/webmaek/aventus/auth"
	"github.com/webmaek/aventus/config"
	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/ratelimit"
	"github.com/webmaek/aventus/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// NewServer builds the HTTP server from configuration. JWT_SECRET is required.
func NewServer(c map[string]string, database database.Database, opts ...func(*Router)) (Server, error) {
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()

	tokens, err := auth.NewTokenIssuer(config.GetString(c, "JWT_SECRET", ""))
	if err != nil {
		return Server{}, fmt.Errorf("token issuer: %w", err)
	}

	opts = append([]func(*Router){withConfig(c), withStartupTime(startupTime), withTokenIssuer(tokens)}, opts...)
	handler := newRouter(database, opts...)

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 30)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 30)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 120)) * time.Second

	server := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return Server{server, startupTime}, nil
}

// Router collects the collaborators newRouter wires into the handlers.
type Router struct {
	config       map[string]string
	startupTime  time.Time
	tokens       *auth.TokenIssuer
	hasher       auth.PasswordHasher
	avatars      services.AvatarStore
	loginLimiter ratelimit.Limiter
}

func withConfig(c map[string]string) func(*Router) {
	return func(r *Router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*Router) {
	return func(r *Router) {
		r.startupTime = startupTime
	}
}

func withTokenIssuer(tokens *auth.TokenIssuer) func(*Router) {
	return func(r *Router) {
		r.tokens = tokens
	}
}

// WithPasswordHasher replaces the default bcrypt hasher.
func WithPasswordHasher(hasher auth.PasswordHasher) func(*Router) {
	return func(r *Router) {
		r.hasher = hasher
	}
}

// WithAvatarStore enables avatar uploads.
func WithAvatarStore(store services.AvatarStore) func(*Router) {
	return func(r *Router) {
		r.avatars = store
	}
}

// WithLoginLimiter throttles POST /api/users/login per client address.
func WithLoginLimiter(limiter ratelimit.Limiter) func(*Router) {
	return func(r *Router) {
		r.loginLimiter = limiter
	}
}

func newRouter(database database.Database, opts ...func(*Router)) *chi.Mux {
	router := Router{hasher: auth.BcryptHasher{}}
	for _, opt := range opts {
		opt(&router)
	}

	sqlDB, err := database.SQLDB()
	if err != nil {
		log.Warn().Err(err).Msg("Database pool stats unavailable for metrics")
	}
	metrics := newHTTPMetrics(sqlDB)

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	// Forwarded-for headers are only honoured behind a proxy that overwrites them.
	if config.GetBool(router.config, "TRUSTED_PROXY", false) {
		chiRouter.Use(middleware.RealIP)
	}
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(metrics.instrument)
	chiRouter.Use(securityHeaders)
	chiRouter.Use(corsMiddleware(config.GetList(router.config, "ACCEPTED_ORIGINS")))

	cookie := auth.CookieConfig{
		Name:   config.GetString(router.config, "COOKIE_NAME", auth.DefaultCookieName),
		Secure: config.IsProduction(router.config),
	}

	handlers := initializeHandlers(database, router, cookie)
	guard := newAuthGuard(router.tokens, cookie)

	chiRouter.Get("/healthz", handlers.healthHandler.healthz())
	chiRouter.Method(http.MethodGet, "/metrics", metrics.handler())

	chiRouter.Route("/api", func(r chi.Router) {
		r.Use(HTTPLoggingMiddleware(!config.IsProduction(router.config)))
		setupRoutes(r, handlers, guard, router.loginLimiter)
	})

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
