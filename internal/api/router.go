package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/petadopt/adoption-api/internal/api/handler"
	"github.com/petadopt/adoption-api/internal/pkg/metrics"
	"github.com/petadopt/adoption-api/internal/api/middleware"
	"github.com/petadopt/adoption-api/internal/core/ports"
)

// Dependencies holds everything the router needs to build its handlers.
type Dependencies struct {
	AuthService ports.AuthService
	PetService  ports.PetService
	// Readiness lists the backing services probed by /health/ready.
	Readiness []handler.DependencyCheck
	// ImageDir is served read-only under /images.
	ImageDir string
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.Recover())
	e.Use(metrics.Middleware())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	petHandler := handler.NewPetHandler(deps.PetService)
	requireAuth := middleware.Auth(deps.AuthService)

	// --- Users ---
	users := e.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/me", authHandler.Me, requireAuth)
	users.GET("/:id", authHandler.GetUser)

	// --- Pets ---
	pets := e.Group("/pets")
	pets.GET("", petHandler.List)
	pets.POST("", petHandler.Create, requireAuth)
	pets.GET("/mine", petHandler.Mine, requireAuth)
	pets.GET("/adoptions", petHandler.Adoptions, requireAuth)
	pets.GET("/:id", petHandler.Get)
	pets.PATCH("/:id", petHandler.Update, requireAuth)
	pets.DELETE("/:id", petHandler.Remove, requireAuth)
	pets.PATCH("/schedule/:id", petHandler.Schedule, requireAuth)
	pets.PATCH("/conclude/:id", petHandler.Conclude, requireAuth)

	if deps.ImageDir != "" {
		e.Static("/images", deps.ImageDir)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
