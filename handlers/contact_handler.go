package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/portfolio-site/contact-backend/errors"
	"github.com/portfolio-site/contact-backend/middleware"
	"github.com/portfolio-site/contact-backend/services"
	"github.com/portfolio-site/contact-backend/types"
)

// ContactSessions resolves the contact form controller of a visitor.
type ContactSessions interface {
	Get(ctx context.Context, visitorID string) (*services.ContactFormController, error)
	End(visitorID string) bool
}

// ContactHandler exposes a visitor's contact form over HTTP.
type ContactHandler struct {
	sessions ContactSessions
	now      func() time.Time
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(sessions ContactSessions) *ContactHandler {
	return &ContactHandler{sessions: sessions, now: time.Now}
}

func (h *ContactHandler) controller(c *gin.Context) (*services.ContactFormController, bool) {
	visitorID := middleware.GetVisitorID(c)
	if visitorID == "" {
		_ = c.Error(apperrors.InternalServerError("visitor id missing from request context"))
		return nil, false
	}

	controller, err := h.sessions.Get(c.Request.Context(), visitorID)
	if err != nil {
		_ = c.Error(apperrors.NewStorageError(err))
		return nil, false
	}
	return controller, true
}

// GetFormHandler godoc
// @Summary      Get contact form state
// @Description  Returns the visitor's field values, field errors, submission status and cooldown.
// @Tags         contact
// @Produce      json
// @Success      200  {object}  types.ContactFormState
// @Failure      500  {object}  types.ErrorResponse
// @Router       /contact [get]
func (h *ContactHandler) GetFormHandler(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, controller.State())
}

// UpdateFieldHandler godoc
// @Summary      Update a contact form field
// @Description  Overwrites one field and clears its validation error.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        field  path      string                    true  "Field name"  Enums(name, email, message, honeypot)
// @Param        body   body      types.FieldUpdateRequest  true  "New value"
// @Success      200    {object}  types.ContactFormState
// @Failure      400    {object}  types.ErrorResponse
// @Failure      500    {object}  types.ErrorResponse
// @Router       /contact/fields/{field} [put]
func (h *ContactHandler) UpdateFieldHandler(c *gin.Context) {
	field, ok := types.ParseContactField(c.Param("field"))
	if !ok {
		_ = c.Error(apperrors.ValidationFailed("unknown_field", "field must be one of: name, email, message, honeypot"))
		return
	}

	var req types.FieldUpdateRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	controller, ok := h.controller(c)
	if !ok {
		return
	}
	if err := controller.UpdateField(field, req.Value); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, controller.State())
}

// ValidateHandler godoc
// @Summary      Validate the contact form
// @Description  Evaluates the current input without changing any state.
// @Tags         contact
// @Produce      json
// @Success      200  {object}  types.ValidationResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /contact/validate [post]
func (h *ContactHandler) ValidateHandler(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	errs := controller.Validate()
	c.JSON(http.StatusOK, types.ValidationResponse{
		Valid:  len(errs) == 0,
		Errors: errs.Strings(),
	})
}

// CooldownHandler godoc
// @Summary      Get remaining cooldown
// @Description  Returns the seconds left before the visitor may send another message.
// @Tags         contact
// @Produce      json
// @Success      200  {object}  types.CooldownResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /contact/cooldown [get]
func (h *ContactHandler) CooldownHandler(c *gin.Context) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	seconds, err := controller.CheckCooldown(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.NewStorageError(err))
		return
	}

	resp := types.CooldownResponse{
		OnCooldown: seconds > 0,
		Seconds:    seconds,
		Display:    types.FormatCooldown(seconds),
	}
	if seconds > 0 {
		availableAt := h.now().Add(time.Duration(seconds) * time.Second).UTC()
		resp.AvailableAt = &availableAt
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitHandler godoc
// @Summary      Submit the contact form
// @Description  Applies any field values in the body, validates the form and sends the message.
// @Description  Submissions that fill the honeypot field are accepted without being sent.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        body  body      types.ContactSubmitRequest  false  "Field values to apply first"
// @Success      200   {object}  types.ContactFormState
// @Failure      400   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Failure      502   {object}  types.ErrorResponse
// @Router       /contact/submit [post]
func (h *ContactHandler) SubmitHandler(c *gin.Context) {
	var req types.ContactSubmitRequest
	if c.Request.ContentLength != 0 {
		if !bindJSONOrError(c, &req) {
			return
		}
	}

	controller, ok := h.controller(c)
	if !ok {
		return
	}

	for field, value := range map[types.ContactField]*string{
		types.FieldName:     req.Name,
		types.FieldEmail:    req.Email,
		types.FieldMessage:  req.Message,
		types.FieldHoneypot: req.Honeypot,
	} {
		if value == nil {
			continue
		}
		if err := controller.UpdateField(field, *value); err != nil {
			_ = c.Error(err)
			return
		}
	}

	if err := controller.Submit(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, controller.State())
}

// EndSessionHandler godoc
// @Summary      End the contact session
// @Description  Discards the visitor's form. The cooldown survives because it is persisted.
// @Tags         contact
// @Success      204
// @Router       /contact [delete]
func (h *ContactHandler) EndSessionHandler(c *gin.Context) {
	h.sessions.End(middleware.GetVisitorID(c))
	c.Status(http.StatusNoContent)
}

func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}
