package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/farecalendar/internal/models"
	appErrors "github.com/dharmasatrya/farecalendar/pkg/errors"
)

// ErrorHandler renders every error that escapes a handler or middleware as
// the JSON error envelope. Internal error details are logged, not returned.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := models.ErrorResponse{
			Error:   appErrors.CodeInternalError,
			Message: "Something went wrong!",
			Code:    http.StatusInternalServerError,
		}

		var he *echo.HTTPError
		var appErr *appErrors.Error
		switch {
		case errors.As(err, &appErr):
			resp = models.ErrorResponse{Error: appErr.Code, Message: appErr.Message, Code: appErr.Status}
		case errors.As(err, &he):
			resp.Code = he.Code
			resp.Message = http.StatusText(he.Code)
			if msg, ok := he.Message.(string); ok {
				resp.Message = msg
			}
			if he.Code == http.StatusNotFound {
				resp.Error = appErrors.CodeNotFound
			} else if he.Code < http.StatusInternalServerError {
				resp.Error = appErrors.CodeInvalidParameter
			}
		}

		if resp.Code >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(resp.Code)
		} else {
			writeErr = c.JSON(resp.Code, resp)
		}
		if writeErr != nil {
			logger.Error("write error response", zap.Error(writeErr))
		}
	}
}
