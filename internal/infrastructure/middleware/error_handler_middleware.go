package middleware

import (
	"net/http"

	"reelhub/pkg/errors"
	"reelhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorHandlerMiddleware renders the last error attached to the context.
// Causes and context are logged, never sent to the client.
func ErrorHandlerMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		appErr := errors.GetAppError(err)
		if appErr == nil {
			appErr = errors.NewInternalError("Internal server error").WithCause(err)
		}

		fields := []interface{}{
			"code", appErr.Code,
			"status", appErr.HTTPStatus,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", logger.RequestID(c.Request.Context()),
		}
		if appErr.Cause != nil {
			fields = append(fields, "error", appErr.Cause)
		}
		for k, v := range appErr.Context {
			fields = append(fields, k, v)
		}

		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Errorw("Request failed", fields...)
		} else {
			log.Debugw("Request rejected", fields...)
		}

		c.JSON(appErr.HTTPStatus, ErrorResponse{
			Error:   string(appErr.Code),
			Message: appErr.Message,
		})
	}
}

// RecoveryMiddleware recovers from panics and returns proper error responses
func RecoveryMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", logger.RequestID(c.Request.Context()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   string(errors.ErrCodeInternal),
					Message: "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
