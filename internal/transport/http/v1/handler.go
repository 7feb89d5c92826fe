// Package v1 provides the REST handlers for the chat API.
package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/chat"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/hub"
)

const version = "1.0.0"

// Handler handles HTTP requests.
type Handler struct {
	service *chat.Service
	hub     *hub.Hub
}

// NewHandler creates a new handler.
func NewHandler(service *chat.Service, h *hub.Hub) *Handler {
	return &Handler{service: service, hub: h}
}

// RegisterRoutes registers the REST routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/about", h.About)
	e.GET("/api/status", h.Status)
	e.GET("/api/time", h.Time)
	e.GET("/hello/:name", h.Hello)

	e.POST("/v1/users", h.CreateUser)
	e.GET("/v1/users", h.ListUsers)
	e.GET("/v1/users/:username", h.GetUser)
	e.GET("/v1/users/:username/inbox", h.GetInbox)

	e.POST("/v1/messages", h.PostMessage)
	e.GET("/v1/messages/history", h.GetHistory)
	e.POST("/v1/messages/:id/read", h.MarkRead)

	e.GET("/health", h.Health)
}

// Root answers the landing probe.
func (h *Handler) Root(c echo.Context) error {
	return c.String(http.StatusOK, "Chat API is running")
}

// About serves a tiny static about page.
func (h *Handler) About(c echo.Context) error {
	return c.HTML(http.StatusOK, "<h1>About Page</h1><p>This is a chat API</p>")
}

// Status reports service status.
// GET /api/status
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "online",
		"timestamp": time.Now(),
		"version":   version,
	})
}

// Time reports the current server time.
// GET /api/time
func (h *Handler) Time(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

// Hello greets the caller by name.
// GET /hello/:name
func (h *Handler) Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"greeting": "Hello, " + c.Param("name") + "!",
	})
}

// Health returns health status plus connection counts.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "healthy",
		"version":     version,
		"connections": h.hub.ConnectionCount(),
		"online":      len(h.service.OnlineUsers()),
	})
}

// errorResponse maps a chat-core error onto an HTTP status and JSON body.
func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownUser), errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
