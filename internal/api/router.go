package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/autoparts/catalog-api/docs"
	"github.com/autoparts/catalog-api/internal/api/handler"
	"github.com/autoparts/catalog-api/internal/api/middleware"
	"github.com/autoparts/catalog-api/internal/core/domain"
	"github.com/autoparts/catalog-api/internal/core/ports"
)

// multipartOverheadBytes leaves room for the text fields and part headers
// around an image of the maximum size.
const multipartOverheadBytes = 1 << 20

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Log            zerolog.Logger
	Auth           ports.AuthService
	Guard          ports.TokenGuard
	Parts          ports.PartService
	Images         ports.ImageStorage
	Checks         map[string]handler.DependencyCheck
	MaxUploadBytes int64

	// Registerer and Gatherer back the HTTP metrics. They default to the
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
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "catalog",
		Registerer: deps.Registerer,
	}))

	authenticated := middleware.Auth(deps.Guard)
	adminOnly := middleware.RequireRole(deps.Guard, domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register-admin", authHandler.RegisterAdmin, authenticated, adminOnly)

	// --- Catalog routes ---
	partHandler := handler.NewPartHandler(deps.Parts, deps.Images, deps.MaxUploadBytes)
	parts := e.Group("/repuestos")
	parts.GET("", partHandler.List)
	parts.GET("/deshabilitados", partHandler.ListDisabled, authenticated, adminOnly)
	parts.GET("/:id", partHandler.Get, middleware.OptionalAuth(deps.Guard))
	uploadLimit := uploadBodyLimit(deps.MaxUploadBytes)
	parts.POST("", partHandler.Create, authenticated, adminOnly, uploadLimit)
	parts.PUT("/:id", partHandler.Update, authenticated, adminOnly, uploadLimit)
	parts.PATCH("/:id/toggle", partHandler.Toggle, authenticated, adminOnly)

	imageHandler := handler.NewImageHandler(deps.Images)
	e.GET("/img/:name", imageHandler.Serve)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// uploadBodyLimit rejects oversized multipart bodies with 413 before they are parsed.
func uploadBodyLimit(maxUploadBytes int64) echo.MiddlewareFunc {
	if maxUploadBytes <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echomiddleware.BodyLimit(fmt.Sprintf("%dB", maxUploadBytes+multipartOverheadBytes))
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
