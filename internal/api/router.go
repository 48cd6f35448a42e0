package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/account-service/docs"
	"github.com/99minutos/account-service/internal/api/handler"
	"github.com/99minutos/account-service/internal/api/middleware"
	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Auth     ports.AuthService
	Sessions ports.SessionResolver
	Accounts ports.AccountService
	Checks   []handlers.Check
	Log      zerolog.Logger

	// APIPrefix is mounted in front of the versioned routes, e.g. "/api/v1".
	APIPrefix string

	// Registerer and Gatherer back the HTTP metrics. Nil means the
	// Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "accounts",
		Registerer: deps.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Accounts)
	utilsHandler := handler.NewUtilsHandler(deps.Accounts)
	authActive := middleware.Auth(deps.Sessions.ResolveActive)
	adminOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleSuperadmin)

	v1 := e.Group(deps.APIPrefix)

	// --- Auth routes (public) ---
	auth := v1.Group("/auth")
	auth.POST("/login/access-token", authHandler.LoginAccessToken)
	auth.POST("/login/refresh-token", authHandler.RefreshToken)
	auth.POST("/password-recovery/:email", authHandler.RecoverPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// --- User routes ---
	users := v1.Group("/users", authActive)
	users.POST("", userHandler.Create, adminOnly)
	users.POST("/", userHandler.Create, adminOnly)
	users.GET("", userHandler.List, adminOnly)
	users.GET("/", userHandler.List, adminOnly)
	users.GET("/me", userHandler.Me)
	users.PATCH("/me", userHandler.UpdateMe)
	users.PATCH("/me/password", userHandler.UpdatePasswordMe)
	users.GET("/:id", userHandler.Get, adminOnly)
	users.PATCH("/:id/disable", userHandler.Disable, adminOnly)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Utils (admin) ---
	utils := v1.Group("/utils", middleware.Auth(deps.Sessions.ResolveAdmin))
	utils.POST("/test-email/", utilsHandler.TestEmail)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Hello World"})
	})

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
