package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pitwall/paddock/internal/domain"
)

// ProcessQuery runs one query through the engine.
// POST /v1/query
func (h *Handler) ProcessQuery(c echo.Context) error {
	var req domain.QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp := h.engine.ProcessQuery(c.Request().Context(), req)
	return c.JSON(http.StatusOK, resp)
}
