package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/portfolio-site/contact-backend/types"
)

const (
	nameMinLength    = 2
	nameMaxLength    = 50
	emailMaxLength   = 100
	messageMinLength = 10
	messageMaxLength = 1000
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateContactInput checks the form fields and reports whether the
// honeypot was filled in. When it was, no field rules are evaluated.
func ValidateContactInput(in types.FormInput) (types.ValidationErrors, bool) {
	errs := types.ValidationErrors{}
	if in.Honeypot != "" {
		return errs, true
	}

	name := strings.TrimSpace(in.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		errs[types.FieldName] = "Name is required"
	case n < nameMinLength:
		errs[types.FieldName] = "Name must be at least 2 characters"
	case n > nameMaxLength:
		errs[types.FieldName] = "Name must be less than 50 characters"
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		errs[types.FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		errs[types.FieldEmail] = "Please enter a valid email address"
	case utf8.RuneCountInString(email) > emailMaxLength:
		errs[types.FieldEmail] = "Email must be less than 100 characters"
	}

	message := strings.TrimSpace(in.Message)
	switch n := utf8.RuneCountInString(message); {
	case n == 0:
		errs[types.FieldMessage] = "Message is required"
	case n < messageMinLength:
		errs[types.FieldMessage] = "Message must be at least 10 characters"
	case n > messageMaxLength:
		errs[types.FieldMessage] = "Message must be less than 1000 characters"
	}

	return errs, false
}
