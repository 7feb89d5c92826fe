package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"
)

// PostMessageRequest is the payload for POST /v1/messages.
type PostMessageRequest struct {
	From    string `json:"from" validate:"required"`
	To      string `json:"to" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// PostMessage sends a message on behalf of a sender without a live
// connection. It goes through the same router as the WebSocket path, so an
// online recipient still receives the push.
// POST /v1/messages
func (h *Handler) PostMessage(c echo.Context) error {
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	msg, err := h.service.Send(c.Request().Context(), req.From, req.To, req.Content)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// GetHistory retrieves the conversation between two users, in send order.
// GET /v1/messages/history?user_a=alice&user_b=bob
func (h *Handler) GetHistory(c echo.Context) error {
	userA := c.QueryParam("user_a")
	userB := c.QueryParam("user_b")

	messages, err := h.service.History(c.Request().Context(), userA, userB)
	if err != nil {
		return errorResponse(c, err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": messages})
}

// MarkRead flips the delivered flag on a stored message.
// POST /v1/messages/:id/read
func (h *Handler) MarkRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid message id"})
	}

	msg, err := h.service.MarkRead(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}
