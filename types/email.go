package types

import "context"

// EmailSender delivers a contact message through an email-delivery provider.
// Implementations resolve on acceptance and return an error whose message
// explains the rejection otherwise.
type EmailSender interface {
	SendContactEmail(ctx context.Context, payload EmailPayload) error
}
