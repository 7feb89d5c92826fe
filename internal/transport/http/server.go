// Package http provides the HTTP server wiring for the chat API.
package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/chat"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/config"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/hub"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/metrics"
	v1 "github.com/GarvitAggarwal178/real-time-chat-api/internal/transport/http/v1"
)

// requestValidator adapts go-playground/validator to echo's Validator hook.
type requestValidator struct {
	validate *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	if err := rv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(400, err.Error())
	}
	return nil
}

// NewAPIServer creates and configures the REST API server.
func NewAPIServer(cfg *config.Config, svc *chat.Service, h *hub.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.Middleware())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(cfg.RateLimit),
			Burst: cfg.RateBurst,
		},
	)))

	// Handlers
	handler := v1.NewHandler(svc, h)
	handler.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// NewWSServer creates the server hosting the WebSocket endpoint. It lives on
// its own port so the chat stream is isolated from the REST surface.
func NewWSServer(handleWS echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/ws", handleWS)

	return e
}
