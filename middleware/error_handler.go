package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/contact-backend/errors"
	"github.com/portfolio-site/contact-backend/logger"
)

// ErrorHandler renders the last error attached to the gin context as JSON.
// Handlers report failures with c.Error and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		err := last.Err

		// Handle AppError
		if appError, ok := errors.As(err); ok {
			statusCode := appError.GetHTTPStatus()

			switch {
			case statusCode >= http.StatusInternalServerError:
				logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))
			default:
				logger.GetLogger().Infow("Request rejected",
					"type", appError.Type,
					"status", statusCode,
					"path", c.Request.URL.Path,
					"request_id", c.GetString(RequestIDKey))
			}

			response := gin.H{
				"type":    string(appError.Type),
				"message": appError.Message,
				"code":    strconv.Itoa(statusCode),
			}

			// Only include details for client-side errors or in debug mode
			if appError.Detail != "" && (gin.IsDebugging() || statusCode < http.StatusInternalServerError) {
				response["details"] = appError.Detail
			}
			if len(appError.Fields) > 0 {
				response["fields"] = appError.Fields
			}
			if appError.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(appError.RetryAfter))
			}

			c.JSON(statusCode, response)
			return
		}

		// Handle Gin binding errors - which come as public errors
		if last.Type == gin.ErrorTypeBind {
			logger.GetLogger().Infow("Request binding error", "error", err, "path", c.Request.URL.Path)

			response := gin.H{
				"type":    string(errors.ValidationError),
				"message": "Failed to bind request",
				"code":    "400",
			}

			if gin.IsDebugging() {
				response["details"] = err.Error()
			}

			c.JSON(http.StatusBadRequest, response)
			return
		}

		// Handle unknown errors
		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")

		response := gin.H{
			"type":    string(errors.ServerError),
			"message": "Internal Server Error",
			"code":    "500",
		}

		if gin.IsDebugging() {
			response["details"] = err.Error()
		}

		c.JSON(http.StatusInternalServerError, response)
	}
}
