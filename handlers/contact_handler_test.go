package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/contact-backend/logger"
	"github.com/portfolio-site/contact-backend/middleware"
	"github.com/portfolio-site/contact-backend/services"
	"github.com/portfolio-site/contact-backend/store"
	"github.com/portfolio-site/contact-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

const testVisitor = "6f1c2b9e-3d4a-4b8f-9e2d-1a2b3c4d5e6f"

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendContactEmail(ctx context.Context, payload types.EmailPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type failingSessions struct{}

func (failingSessions) Get(context.Context, string) (*services.ContactFormController, error) {
	return nil, errors.New("redis: connection refused")
}

func (failingSessions) End(string) bool { return false }

func setupContactRouter(t *testing.T, kv store.KeyValueStore, sender types.EmailSender) (*gin.Engine, *services.SessionRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := services.NewSessionRegistry(kv, sender, services.DefaultStorageKey, time.Hour, nil,
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithLocation(time.UTC),
		services.WithTickInterval(time.Hour),
	)
	t.Cleanup(registry.CloseAll)

	return newContactEngine(NewContactHandler(registry)), registry
}

func newContactEngine(h *ContactHandler) *gin.Engine {
	h.now = func() time.Time { return fixedNow }

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.VisitorMiddleware(false))
	contact := r.Group("/v1/contact")
	{
		contact.GET("", h.GetFormHandler)
		contact.DELETE("", h.EndSessionHandler)
		contact.PUT("/fields/:field", h.UpdateFieldHandler)
		contact.POST("/validate", h.ValidateHandler)
		contact.GET("/cooldown", h.CooldownHandler)
		contact.POST("/submit", h.SubmitHandler)
	}
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.VisitorHeader, testVisitor)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) types.ContactFormState {
	t.Helper()
	var state types.ContactFormState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func strPtr(s string) *string { return &s }

func TestContactHandler_GetForm(t *testing.T) {
	r, _ := setupContactRouter(t, store.NewMemoryStore(), new(MockEmailSender))

	w := doRequest(r, http.MethodGet, "/v1/contact", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, types.StatusIdle, state.Status)
	assert.Equal(t, "00:00", state.CooldownDisplay)
	assert.False(t, state.Locked)
}

func TestContactHandler_UpdateField(t *testing.T) {
	r, _ := setupContactRouter(t, store.NewMemoryStore(), new(MockEmailSender))

	tests := []struct {
		name       string
		field      string
		body       interface{}
		wantStatus int
	}{
		{name: "known field", field: "name", body: types.FieldUpdateRequest{Value: "Ada"}, wantStatus: http.StatusOK},
		{name: "unknown field", field: "phone", body: types.FieldUpdateRequest{Value: "555"}, wantStatus: http.StatusBadRequest},
		{name: "malformed body", field: "email", body: "not an object", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPut, "/v1/contact/fields/"+tt.field, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	state := decodeState(t, doRequest(r, http.MethodGet, "/v1/contact", nil))
	assert.Equal(t, "Ada", state.Fields.Name)
}

func TestContactHandler_Validate(t *testing.T) {
	r, _ := setupContactRouter(t, store.NewMemoryStore(), new(MockEmailSender))

	doRequest(r, http.MethodPut, "/v1/contact/fields/email", types.FieldUpdateRequest{Value: "not-an-email"})
	w := doRequest(r, http.MethodPost, "/v1/contact/validate", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, map[string]string{
		"name":    "Name is required",
		"email":   "Please enter a valid email address",
		"message": "Message is required",
	}, resp.Errors)

	// Validation alone does not surface errors on the form.
	state := decodeState(t, doRequest(r, http.MethodGet, "/v1/contact", nil))
	assert.Empty(t, state.Errors)
}

func TestContactHandler_SubmitFlow(t *testing.T) {
	kv := store.NewMemoryStore()
	sender := new(MockEmailSender)
	sender.On("SendContactEmail", mock.Anything, types.EmailPayload{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Time:    "3/9/2024, 2:05:07 PM",
		Message: "Hello there, about the engine.",
	}).Return(nil).Once()

	r, _ := setupContactRouter(t, kv, sender)

	body := types.ContactSubmitRequest{
		Name:    strPtr(" Ada Lovelace "),
		Email:   strPtr("ada@example.com"),
		Message: strPtr("Hello there, about the engine."),
	}
	w := doRequest(r, http.MethodPost, "/v1/contact/submit", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	state := decodeState(t, w)
	assert.Equal(t, types.StatusSuccess, state.Status)
	assert.Equal(t, types.FormInput{}, state.Fields)
	assert.Equal(t, 60, state.CooldownRemaining)

	_, found, err := kv.Get(context.Background(), store.ScopedKey(services.DefaultStorageKey, testVisitor))
	require.NoError(t, err)
	assert.True(t, found)

	// A second attempt inside the window is rate limited.
	w = doRequest(r, http.MethodPost, "/v1/contact/submit", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	w = doRequest(r, http.MethodGet, "/v1/contact/cooldown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cooldown types.CooldownResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cooldown))
	assert.True(t, cooldown.OnCooldown)
	assert.Equal(t, 60, cooldown.Seconds)
	assert.Equal(t, "01:00", cooldown.Display)
	require.NotNil(t, cooldown.AvailableAt)
	assert.True(t, cooldown.AvailableAt.Equal(fixedNow.Add(time.Minute)))

	sender.AssertExpectations(t)
}

func TestContactHandler_SubmitValidationError(t *testing.T) {
	sender := new(MockEmailSender)
	r, _ := setupContactRouter(t, store.NewMemoryStore(), sender)

	w := doRequest(r, http.MethodPost, "/v1/contact/submit", types.ContactSubmitRequest{
		Name:    strPtr("A"),
		Email:   strPtr("ada@example.com"),
		Message: strPtr("Hello there, about the engine."),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["type"])
	assert.Equal(t, map[string]interface{}{"name": "Name must be at least 2 characters"}, body["fields"])
	sender.AssertNotCalled(t, "SendContactEmail", mock.Anything, mock.Anything)
}

func TestContactHandler_SubmitHoneypot(t *testing.T) {
	sender := new(MockEmailSender)
	r, _ := setupContactRouter(t, store.NewMemoryStore(), sender)

	w := doRequest(r, http.MethodPost, "/v1/contact/submit", types.ContactSubmitRequest{
		Name:     strPtr("Spam Bot"),
		Email:    strPtr("bot@example.com"),
		Message:  strPtr("Buy cheap things right now!"),
		Honeypot: strPtr("https://spam.example"),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.StatusIdle, decodeState(t, w).Status)
	sender.AssertNotCalled(t, "SendContactEmail", mock.Anything, mock.Anything)
}

func TestContactHandler_SubmitDeliveryFailure(t *testing.T) {
	sender := new(MockEmailSender)
	sender.On("SendContactEmail", mock.Anything, mock.Anything).Return(errors.New("upstream timeout")).Once()
	r, _ := setupContactRouter(t, store.NewMemoryStore(), sender)

	w := doRequest(r, http.MethodPost, "/v1/contact/submit", types.ContactSubmitRequest{
		Name:    strPtr("Ada"),
		Email:   strPtr("ada@example.com"),
		Message: strPtr("Hello there, about the engine."),
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	state := decodeState(t, doRequest(r, http.MethodGet, "/v1/contact", nil))
	assert.Equal(t, types.StatusError, state.Status)
	assert.Equal(t, "Ada", state.Fields.Name)
}

func TestContactHandler_EndSession(t *testing.T) {
	r, registry := setupContactRouter(t, store.NewMemoryStore(), new(MockEmailSender))

	doRequest(r, http.MethodPut, "/v1/contact/fields/name", types.FieldUpdateRequest{Value: "Ada"})
	assert.Equal(t, 1, registry.Count())

	w := doRequest(r, http.MethodDelete, "/v1/contact", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, registry.Count())

	state := decodeState(t, doRequest(r, http.MethodGet, "/v1/contact", nil))
	assert.Empty(t, state.Fields.Name)
}

func TestContactHandler_SessionStoreUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newContactEngine(NewContactHandler(failingSessions{}))

	w := doRequest(r, http.MethodGet, "/v1/contact", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "STORAGE_ERROR", body["type"])
}
