package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
)

// detail strips the sentinel prefix from a wrapped service error,
// leaving the caller-safe message.
func detail(err error) string {
	msg := err.Error()
	if _, after, found := strings.Cut(msg, ": "); found {
		return after
	}
	return msg
}

// mapError translates service sentinels into HTTP errors. Unauthorized
// gets the route-specific generic message so rejection reasons never
// leak to the caller.
func mapError(err error, unauthorizedMsg string) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, detail(err))
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, unauthorizedMsg)
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, detail(err))
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, detail(err))
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, detail(err))
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Erro interno do servidor.")
}

// NewHTTPErrorHandler renders every error as {"detail": ..., "request_id": ...}
// and keeps internals out of 500 responses.
func NewHTTPErrorHandler(base *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		rid := c.Response().Header().Get(echo.HeaderXRequestID)

		code := http.StatusInternalServerError
		message := "Erro interno do servidor."

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		}

		if code >= 500 {
			base.Error("unhandled_error", "request_id", rid, "path", c.Request().URL.Path, "error", err)
			message = "Erro interno do servidor."
		}

		body := echo.Map{"detail": message}
		if rid != "" {
			body["request_id"] = rid
		}
		if writeErr := c.JSON(code, body); writeErr != nil {
			base.Error("error_response_write_failed", "request_id", rid, "error", writeErr)
		}
	}
}
