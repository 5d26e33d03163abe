package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/viciniti/booking-api/internal/handler"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
)

// ErrorHandler converts errors attached to the gin context into the standard
// response envelope. AppError codes map to HTTP statuses; anything else is a
// 500 with the detail kept out of the response body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		lastErr := c.Errors.Last().Err

		log.Error().
			Err(lastErr).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request error")

		var appErr *apperrors.AppError
		if errors.As(lastErr, &appErr) {
			resp := handler.NewErrorResponse(appErr.Message)
			resp.Data = appErr.Details
			c.JSON(statusFor(appErr.Code), resp)
			return
		}

		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
	}
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	case apperrors.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
