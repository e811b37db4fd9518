package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/contact-backend/config"
	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockConfig := &config.ServerConfig{
		AllowedOrigins: []string{"http://localhost:3000", "*.portfolio.dev"},
	}

	testCases := []struct {
		name           string
		requestOrigin  string
		isOptions      bool
		expectedStatus int
		expectedOrigin string
	}{
		{
			name:           "Allowed Origin - Simple Request",
			requestOrigin:  "http://localhost:3000",
			expectedStatus: http.StatusOK,
			expectedOrigin: "http://localhost:3000",
		},
		{
			name:           "Wildcard Subdomain - Simple Request",
			requestOrigin:  "https://www.portfolio.dev",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://www.portfolio.dev",
		},
		{
			name:           "Disallowed Origin - Simple Request",
			requestOrigin:  "http://malicious.com",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "No Origin Header - Simple Request",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Allowed Origin - Preflight Request",
			requestOrigin:  "http://localhost:3000",
			isOptions:      true,
			expectedStatus: http.StatusNoContent,
			expectedOrigin: "http://localhost:3000",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(mockConfig))
			r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
			r.OPTIONS("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

			method := http.MethodGet
			if tc.isOptions {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/test", nil)
			if tc.requestOrigin != "" {
				req.Header.Set("Origin", tc.requestOrigin)
			}
			if tc.isOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			if tc.expectedOrigin != "" {
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestCORSMiddleware_AllowAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(&config.ServerConfig{AllowedOrigins: []string{"*"}}))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
}
