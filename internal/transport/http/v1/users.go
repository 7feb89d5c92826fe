package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"
)

// CreateUserRequest is the payload for POST /v1/users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
}

// CreateUser explicitly registers a username.
// POST /v1/users
func (h *Handler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.CreateUser(c.Request().Context(), req.Username)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// ListUsers lists every registered user. There are no credential fields to
// strip; a User is only a name and a creation time.
// GET /v1/users
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, map[string]any{"users": users})
}

// GetUser retrieves one directory entry.
// GET /v1/users/:username
func (h *Handler) GetUser(c echo.Context) error {
	user, err := h.service.FindUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetInbox lists every message the user has sent or received.
// GET /v1/users/:username/inbox
func (h *Handler) GetInbox(c echo.Context) error {
	messages, err := h.service.Inbox(c.Request().Context(), c.Param("username"))
	if err != nil {
		return errorResponse(c, err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": messages})
}
