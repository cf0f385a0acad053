package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/farecalendar/internal/models"
	appErrors "github.com/dharmasatrya/farecalendar/pkg/errors"
)

type FlightService interface {
	PriceCalendar(ctx context.Context, req models.CalendarRequest) (*models.CalendarResult, error)
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error)
}

type FlightHandler struct {
	service FlightService
}

func NewFlightHandler(svc FlightService) *FlightHandler {
	return &FlightHandler{service: svc}
}

// PriceCalendar handles GET /api/flights/price-calendar.
func (h *FlightHandler) PriceCalendar(c echo.Context) error {
	var req models.CalendarRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, bindError(err))
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	result, err := h.service.PriceCalendar(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Search handles GET /api/flights/search.
func (h *FlightHandler) Search(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, bindError(err))
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	result, err := h.service.Search(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func bindError(err error) error {
	return appErrors.Wrap(err, appErrors.CodeInvalidParameter, http.StatusBadRequest, "Failed to parse query parameters")
}

func respondError(c echo.Context, err error) error {
	appErr := appErrors.FromError(err)
	return c.JSON(appErr.Status, models.ErrorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
		Code:    appErr.Status,
	})
}
