package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pitwall/paddock/internal/confirm"
	"github.com/pitwall/paddock/internal/domain"
)

// ResolveConfirmation applies a human decision to a pending confirmation.
// POST /v1/confirmations/:confirmation_id/resolve
func (h *Handler) ResolveConfirmation(c echo.Context) error {
	confirmationID := c.Param("confirmation_id")

	var req domain.ConfirmationDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Action == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "action is required"})
	}

	result := h.engine.ProcessConfirmation(c.Request().Context(), confirmationID, req)
	if !result.OK {
		status := http.StatusConflict
		if result.Reason == confirm.FailureNotFound {
			status = http.StatusNotFound
		}
		return c.JSON(status, result)
	}
	return c.JSON(http.StatusOK, result)
}

// GetPendingConfirmations lists pending confirmations for a session.
// GET /v1/sessions/:session_id/confirmations
func (h *Handler) GetPendingConfirmations(c echo.Context) error {
	sessionID := c.Param("session_id")

	pending := h.engine.GetPendingConfirmations(sessionID)
	if pending == nil {
		pending = []domain.ConfirmationRequest{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"confirmations": pending,
	})
}
