package types

import (
	"fmt"
	"time"
)

// ContactField names one of the editable fields of the contact form.
type ContactField string

const (
	FieldName     ContactField = "name"
	FieldEmail    ContactField = "email"
	FieldMessage  ContactField = "message"
	FieldHoneypot ContactField = "honeypot"
)

// ParseContactField maps a raw field name onto a known ContactField.
func ParseContactField(raw string) (ContactField, bool) {
	switch f := ContactField(raw); f {
	case FieldName, FieldEmail, FieldMessage, FieldHoneypot:
		return f, true
	default:
		return "", false
	}
}

// FormInput holds the raw values typed into the contact form.
type FormInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Honeypot string `json:"honeypot"`
}

// Get returns the value currently held for field.
func (f FormInput) Get(field ContactField) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldMessage:
		return f.Message
	case FieldHoneypot:
		return f.Honeypot
	}
	return ""
}

// Set overwrites the value held for field. Unknown fields are ignored.
func (f *FormInput) Set(field ContactField, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldMessage:
		f.Message = value
	case FieldHoneypot:
		f.Honeypot = value
	}
}

// ValidationErrors maps a field to its human-readable error. A missing key
// means the field is valid.
type ValidationErrors map[ContactField]string

// Clone returns an independent copy.
func (v ValidationErrors) Clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	for k, msg := range v {
		out[k] = msg
	}
	return out
}

// Strings converts the errors into a plain string map for JSON responses.
func (v ValidationErrors) Strings() map[string]string {
	out := make(map[string]string, len(v))
	for k, msg := range v {
		out[string(k)] = msg
	}
	return out
}

// SubmissionStatus drives which message panel the front-end shows.
type SubmissionStatus string

const (
	StatusIdle       SubmissionStatus = "idle"
	StatusSubmitting SubmissionStatus = "submitting"
	StatusSuccess    SubmissionStatus = "success"
	StatusCooldown   SubmissionStatus = "cooldown"
	StatusError      SubmissionStatus = "error"
)

// EmailPayload is the template data handed to the email-delivery provider.
type EmailPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Time    string `json:"time"`
	Message string `json:"message"`
}

// ContactFormState is the snapshot exposed to the presentation layer.
type ContactFormState struct {
	Fields            FormInput         `json:"fields"`
	Errors            map[string]string `json:"errors"`
	Status            SubmissionStatus  `json:"status"`
	CooldownRemaining int               `json:"cooldownRemaining"`
	CooldownDisplay   string            `json:"cooldownDisplay"`
	Locked            bool              `json:"locked"`
}

// CooldownResponse is returned by the cooldown endpoint.
type CooldownResponse struct {
	OnCooldown  bool       `json:"onCooldown"`
	Seconds     int        `json:"seconds"`
	Display     string     `json:"display"`
	AvailableAt *time.Time `json:"availableAt,omitempty"`
}

// ValidationResponse is returned by the validate endpoint.
type ValidationResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// FieldUpdateRequest is the body of a single field update.
type FieldUpdateRequest struct {
	Value string `json:"value"`
}

// ContactSubmitRequest optionally carries field values to apply before submitting.
// Nil members leave the stored value untouched.
type ContactSubmitRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Message  *string `json:"message,omitempty"`
	Honeypot *string `json:"honeypot,omitempty"`
}

// FormatCooldown renders a number of seconds as mm:ss.
func FormatCooldown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
