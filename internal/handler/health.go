package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/farecalendar/internal/models"
)

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:       "ok",
		Message:      "Budget Flight Finder API is running",
		API:          "SerpApi (Google Flights)",
		FreeSearches: "100/month",
	})
}
