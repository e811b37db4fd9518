package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitorRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), VisitorMiddleware(false))
	r.GET("/test", func(c *gin.Context) {
		*seen = GetVisitorID(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestVisitorMiddleware_IssuesNewID(t *testing.T) {
	var seen string
	r := visitorRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(VisitorHeader))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, VisitorCookieName, cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestVisitorMiddleware_Sources(t *testing.T) {
	cookieID := uuid.New().String()
	headerID := uuid.New().String()

	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "cookie", cookie: cookieID, want: cookieID},
		{name: "header wins over cookie", cookie: cookieID, header: headerID, want: headerID},
		{name: "malformed header falls back to cookie", cookie: cookieID, header: "../../etc", want: cookieID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			r := visitorRouter(&seen)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(VisitorHeader, tt.header)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestVisitorMiddleware_MalformedCookie(t *testing.T) {
	var seen string
	r := visitorRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: "not-a-uuid"})
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, "not-a-uuid", seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "lb-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "lb-123", w.Body.String())
	assert.Equal(t, "lb-123", w.Header().Get("X-Request-ID"))
}
