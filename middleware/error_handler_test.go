package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	customErrors "github.com/portfolio-site/contact-backend/errors"
	"github.com/portfolio-site/contact-backend/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name               string
		err                error
		ginErrorType       gin.ErrorType
		expectedStatusCode int
		expectedBody       map[string]any
		expectedRetryAfter string
	}{
		{
			name:               "Standard Go Error",
			err:                errors.New("internal processing error"),
			ginErrorType:       gin.ErrorTypePrivate,
			expectedStatusCode: http.StatusInternalServerError,
			expectedBody: map[string]any{
				"type":    "SERVER_ERROR",
				"code":    "500",
				"message": "Internal Server Error",
			},
		},
		{
			name:               "Gin Bind Error",
			err:                errors.New("failed to bind JSON"),
			ginErrorType:       gin.ErrorTypeBind,
			expectedStatusCode: http.StatusBadRequest,
			expectedBody: map[string]any{
				"type":    "VALIDATION_ERROR",
				"code":    "400",
				"message": "Failed to bind request",
			},
		},
		{
			name:               "Field Validation Error",
			err:                customErrors.InvalidFields(map[string]string{"email": "Please enter a valid email address"}),
			ginErrorType:       gin.ErrorTypePublic,
			expectedStatusCode: http.StatusBadRequest,
			expectedBody: map[string]any{
				"type":    "VALIDATION_ERROR",
				"code":    "400",
				"message": "One or more fields are invalid",
				"fields":  map[string]any{"email": "Please enter a valid email address"},
			},
		},
		{
			name:               "Cooldown Error",
			err:                customErrors.CooldownActive(42),
			ginErrorType:       gin.ErrorTypePublic,
			expectedStatusCode: http.StatusTooManyRequests,
			expectedBody: map[string]any{
				"type":    "RATE_LIMIT_EXCEEDED",
				"code":    "429",
				"message": "Please wait before sending another message",
				"details": "Retry in 42 seconds",
			},
			expectedRetryAfter: "42",
		},
		{
			name:               "Conflict Error",
			err:                customErrors.NewConflictError("Submission already in progress", "wait"),
			ginErrorType:       gin.ErrorTypePublic,
			expectedStatusCode: http.StatusConflict,
			expectedBody: map[string]any{
				"type":    "CONFLICT",
				"code":    "409",
				"message": "Submission already in progress",
				"details": "wait",
			},
		},
		{
			name:               "Delivery Error hides details",
			err:                customErrors.DeliveryFailed(errors.New("emailjs: status 400: bad template")),
			ginErrorType:       gin.ErrorTypePublic,
			expectedStatusCode: http.StatusBadGateway,
			expectedBody: map[string]any{
				"type":    "EXTERNAL_SERVICE_ERROR",
				"code":    "502",
				"message": "Failed to send message",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler())
			router.GET("/test", func(c *gin.Context) {
				_ = c.Error(tc.err).SetType(tc.ginErrorType)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatusCode, w.Code)
			assert.Equal(t, tc.expectedRetryAfter, w.Header().Get("Retry-After"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.expectedBody, body)
		})
	}
}

func TestErrorHandler_NoErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
