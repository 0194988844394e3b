package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/99minutos/auth-system/docs"
	"github.com/99minutos/auth-system/internal/api/handler"
	"github.com/99minutos/auth-system/internal/api/middleware"
	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

// Dependencies are the wired services the router exposes.
type Dependencies struct {
	Auth         ports.AuthService
	Tokens       ports.TokenValidator
	Verification ports.VerificationService
	Users        ports.UserService

	Mongo *mongo.Database
	// Redis may be nil when the denylist is not Redis-backed.
	Redis *redis.Client

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("auth"))

	authHandler := handler.NewAuthHandler(deps.Auth)
	verificationHandler := handler.NewVerificationHandler(deps.Verification)
	userHandler := handler.NewUserHandler(deps.Users)
	requireSession := middleware.Auth(deps.Tokens)

	// --- Auth routes ---
	v1 := e.Group("/api/v1")
	v1.POST("/register", authHandler.Register)
	v1.POST("/login", authHandler.Login)
	v1.POST("/refresh", authHandler.Refresh)
	v1.POST("/logout", authHandler.Logout, requireSession)

	// --- User routes ---
	v1.GET("/profile", userHandler.Profile, requireSession)
	v1.PUT("/user/:id", userHandler.Update, requireSession)
	v1.GET("/users/:id", userHandler.Show, requireSession, middleware.RBAC(domain.RoleAdmin))

	// --- Email verification ---
	email := e.Group("/email")
	email.POST("/request-verification", verificationHandler.RequestVerification, requireSession)
	email.POST("/verify", verificationHandler.Verify)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
