package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iwc-recycling/accounts-api/internal/api/handler"
	"github.com/iwc-recycling/accounts-api/internal/api/middleware"
	"github.com/iwc-recycling/accounts-api/internal/core/domain"
	"github.com/iwc-recycling/accounts-api/internal/core/ports"
)

// Deps carries everything the router wires together.
type Deps struct {
	Registration ports.RegistrationService
	Accounts     ports.AccountService
	Tokens       ports.TokenVerifier

	Mongo *mongo.Database
	Redis *redis.Client

	Log             zerolog.Logger
	AllowedOrigin   string
	ExposeInternals bool

	// Registerer and Gatherer default to the Prometheus globals; tests pass
	// a fresh registry so repeated router construction does not collide.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.ExposeInternals)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{d.AllowedOrigin},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Registration, d.Accounts)
	authMiddleware := middleware.Auth(d.Tokens)
	adminOnly := middleware.RBAC(d.Accounts, domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.GET("/role-counts", authHandler.RoleCounts)
	auth.GET("/google", authHandler.Google)
	auth.GET("/me", authHandler.Me, authMiddleware)
	auth.GET("/routes", authHandler.Routes, authMiddleware)
	auth.POST("/approve/:id", authHandler.Approve, authMiddleware, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: d.Gatherer,
	}))

	return e
}
